package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/planbeam/storyforge/internal/config"
	"github.com/planbeam/storyforge/internal/db"
	"github.com/planbeam/storyforge/internal/embedding"
	"github.com/planbeam/storyforge/internal/observability"
	"github.com/planbeam/storyforge/internal/pipeline"
	"github.com/planbeam/storyforge/internal/schemas"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Validate, dedupe and score raw model output into a story batch",
	Long:  "Reads raw LLM output from a file, runs the recovery/validation/dedupe/scoring pipeline, and prints the result envelope as JSON. With --epic-id and a database, the epic's recent children are used as the duplicate-check corpus.",
	RunE:  runDecompose,
}

var (
	decomposeInput      string
	decomposeEpicTitle  string
	decomposeEpicID     string
	decomposeMaxStories int
	decomposeConfigPath string
	decomposeCheck      bool
	decomposeVerbose    bool
)

func init() {
	decomposeCmd.Flags().StringVarP(&decomposeInput, "input", "i", "", "Path to raw model output (required)")
	decomposeCmd.Flags().StringVar(&decomposeEpicTitle, "epic-title", "Epic", "Epic title used for stub fallback stories")
	decomposeCmd.Flags().StringVar(&decomposeEpicID, "epic-id", "", "Epic UUID; enables corpus-based duplicate detection via the database")
	decomposeCmd.Flags().IntVar(&decomposeMaxStories, "max-stories", 0, "Story ceiling (default 6, clamped to [3,12])")
	decomposeCmd.Flags().StringVar(&decomposeConfigPath, "config", "", "Path to JSON config file")
	decomposeCmd.Flags().BoolVar(&decomposeCheck, "check", false, "Validate the output envelope against the JSON schema")
	decomposeCmd.Flags().BoolVarP(&decomposeVerbose, "verbose", "v", false, "Print a formatted summary to stderr")

	if err := decomposeCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(decomposeConfigPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(decomposeInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	embedder, closeEmbedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEmbedder()

	opts := pipeline.Options{
		EpicTitle:  decomposeEpicTitle,
		MaxStories: decomposeMaxStories,
	}
	if cfg.MaxStories != 0 && decomposeMaxStories == 0 {
		opts.MaxStories = cfg.MaxStories
	}

	var database *db.DB
	var cachedIDs map[string]bool
	if decomposeEpicID != "" {
		epicID, err := uuid.Parse(decomposeEpicID)
		if err != nil {
			return fmt.Errorf("invalid epic-id: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("epic-id requires a database (set DATABASE_URL or database_url in config)")
		}
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		corpus, err := database.ListEpicChildren(ctx, epicID, 0)
		if err != nil {
			return err
		}
		opts.Corpus = corpus

		ids := make([]string, len(corpus))
		for i, item := range corpus {
			ids[i] = item.ID
		}
		cache, err := database.FetchIssueEmbeddings(ctx, ids)
		if err != nil {
			return err
		}
		opts.EmbeddingCache = cache
		cachedIDs = make(map[string]bool, len(cache))
		for id := range cache {
			cachedIDs[id] = true
		}
	}

	pipe := pipeline.New(embedder)
	if cfg.SimilarityThreshold > 0 {
		pipe = pipeline.NewWithThreshold(embedder, cfg.SimilarityThreshold)
	}
	result := pipe.Decompose(ctx, string(raw), opts)

	// Dedupe backfills cache misses in place; persist the new vectors.
	if database != nil && opts.EmbeddingCache != nil {
		fresh := embedding.Cache{}
		for id, vec := range opts.EmbeddingCache {
			if !cachedIDs[id] {
				fresh[id] = vec
			}
		}
		if len(fresh) > 0 {
			if err := database.UpsertIssueEmbeddings(ctx, embedModelLabel(cfg), fresh); err != nil {
				return err
			}
		}
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if decomposeCheck {
		if err := schemas.ValidateJSONBytes(schemas.DecomposeResultSchema, payload); err != nil {
			return fmt.Errorf("result envelope failed schema check: %w", err)
		}
	}
	if decomposeVerbose || cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintDecomposeResult(&result)
	}

	fmt.Println(string(payload))
	return nil
}

// loadConfig merges a config file (when given) over environment defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.FromEnv()
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// embedModelLabel names the model that produced stored vectors, so cached
// pseudo-vectors are never mistaken for provider output.
func embedModelLabel(cfg *config.Config) string {
	if cfg.GeminiAPIKey == "" {
		return "pseudo"
	}
	if cfg.EmbedModel != "" {
		return cfg.EmbedModel
	}
	return embedding.DefaultModel
}

// newEmbedder picks the Gemini embedder when an API key is configured, the
// deterministic pseudo fallback otherwise.
func newEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, func(), error) {
	if cfg.GeminiAPIKey == "" {
		return embedding.PseudoEmbedder{}, func() {}, nil
	}
	gemini, err := embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return gemini, func() { _ = gemini.Close() }, nil
}
