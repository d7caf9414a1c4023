// Package pipeline provides the high-level orchestration for turning raw model
// output into a validated, deduplicated, scored story batch. Every stage has a
// degraded path; a decomposition never hard-fails on malformed model output.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/planbeam/storyforge/internal/dedupe"
	"github.com/planbeam/storyforge/internal/embedding"
	"github.com/planbeam/storyforge/internal/parsing"
	"github.com/planbeam/storyforge/internal/scoring"
	"github.com/planbeam/storyforge/internal/types"
	"github.com/planbeam/storyforge/internal/validation"
)

// Story-count bounds for a full decomposition. Regeneration uses exactly 1.
const (
	MinStories     = 3
	MaxStories     = 12
	DefaultStories = 6
)

// stubWarning is appended when the model output was unusable and the
// deterministic stub batch is substituted.
const stubWarning = "model output unusable; using stub stories"

// ProgressEvent reports one completed pipeline step.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is invoked after each pipeline step.
type ProgressCallback func(event ProgressEvent)

// Options configures a decomposition run.
type Options struct {
	// EpicTitle seeds stub story titles when the model output is unusable.
	EpicTitle string
	// MaxStories is the requested ceiling; clamped to [MinStories, MaxStories],
	// zero means DefaultStories.
	MaxStories int
	// Corpus is the set of existing issues to check new stories against.
	Corpus []types.CorpusItem
	// EmbeddingCache, when non-nil, enables the incremental dedupe path that
	// reuses cached corpus embeddings and backfills misses.
	EmbeddingCache embedding.Cache
	// OnProgress, when non-nil, receives per-step events.
	OnProgress ProgressCallback
}

// Pipeline wires the algorithmic components together.
type Pipeline struct {
	detector *dedupe.Detector
}

// New creates a Pipeline using the given embedder for duplicate detection.
func New(embedder embedding.Embedder) *Pipeline {
	return &Pipeline{detector: dedupe.NewDetector(embedder)}
}

// NewWithThreshold creates a Pipeline with a custom duplicate-detection
// similarity threshold.
func NewWithThreshold(embedder embedding.Embedder, threshold float64) *Pipeline {
	return &Pipeline{detector: dedupe.NewDetectorWithThreshold(embedder, threshold)}
}

// Decompose runs the full pipeline over raw model output: parse, validate,
// lint, normalize, dedupe, score. It is total: any input yields an envelope.
func (p *Pipeline) Decompose(ctx context.Context, raw string, opts Options) types.DecomposeResult {
	maxStories := clampMaxStories(opts.MaxStories)
	return p.run(ctx, raw, maxStories, opts)
}

// RegenerateStory runs the pipeline for a single replacement story. The count
// ceiling is 1 and duplicate detection takes the incremental path so only the
// changed story is embedded.
func (p *Pipeline) RegenerateStory(ctx context.Context, raw string, opts Options) types.DecomposeResult {
	if opts.EmbeddingCache == nil {
		opts.EmbeddingCache = embedding.Cache{}
	}
	return p.run(ctx, raw, 1, opts)
}

func (p *Pipeline) run(ctx context.Context, raw string, maxStories int, opts Options) types.DecomposeResult {
	var warnings []string

	parsed, parsedOK := parsing.Parse(raw)
	emit(opts.OnProgress, "parse", fmt.Sprintf("parsed=%t", parsedOK))

	var stories []types.Story
	structureValid := false
	if parsedOK {
		var schemaWarnings []string
		stories, schemaWarnings = validation.ValidateSchema(parsed)
		warnings = append(warnings, schemaWarnings...)
		structureValid = stories != nil
	}
	if !structureValid {
		stories = stubStories(opts.EpicTitle, maxStories)
		warnings = append(warnings, stubWarning)
	}
	emit(opts.OnProgress, "validate", fmt.Sprintf("stories=%d structure_valid=%t", len(stories), structureValid))

	stories, normWarnings := validation.Normalize(stories, maxStories)
	warnings = append(warnings, normWarnings...)
	emit(opts.OnProgress, "normalize", fmt.Sprintf("stories=%d", len(stories)))

	var matches []types.DuplicateMatch
	if opts.EmbeddingCache != nil {
		matches = p.detector.FindDuplicatesIncremental(ctx, stories, opts.Corpus, opts.EmbeddingCache)
	} else {
		matches = p.detector.FindDuplicates(ctx, stories, opts.Corpus)
	}
	emit(opts.OnProgress, "dedupe", fmt.Sprintf("matches=%d", len(matches)))

	score := scoring.ScoreBatch(stories, warnings, matches, structureValid)
	emit(opts.OnProgress, "score", fmt.Sprintf("quality=%.3f", score))

	return types.DecomposeResult{
		Success:          structureValid,
		Stories:          stories,
		Warnings:         warnings,
		DuplicateMatches: matches,
		QualityScore:     score,
		Stub:             !structureValid,
		GeneratedAt:      time.Now().UTC(),
	}
}

// stubStories builds the deterministic fallback batch used when model output
// cannot be recovered.
func stubStories(epicTitle string, count int) []types.Story {
	if epicTitle == "" {
		epicTitle = "Epic"
	}
	stories := make([]types.Story, count)
	for i := range stories {
		stories[i] = types.Story{
			Title:              fmt.Sprintf("%s Story %d", epicTitle, i+1),
			AcceptanceCriteria: []string{"Criteria one", "Criteria two"},
		}
	}
	return stories
}

func clampMaxStories(n int) int {
	if n == 0 {
		return DefaultStories
	}
	if n < MinStories {
		return MinStories
	}
	if n > MaxStories {
		return MaxStories
	}
	return n
}

func emit(cb ProgressCallback, step, message string) {
	if cb != nil {
		cb(ProgressEvent{Step: step, Message: message})
	}
}
