// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the CLI configuration, loadable from a JSON file and overridable
// via environment variables. All fields are optional; missing values use
// defaults or must be provided via CLI flags.
type Config struct {
	// GeminiAPIKey enables the real embedding provider. Empty means the
	// deterministic pseudo-embedding fallback.
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	// EmbedModel is the embedding model name (default gemini-embedding-001).
	EmbedModel string `json:"embed_model,omitempty"`
	// DatabaseURL is the PostgreSQL connection URL for variant/run/corpus reads.
	DatabaseURL string `json:"database_url,omitempty"`

	// MaxStories is the default story ceiling for a decomposition.
	MaxStories int `json:"max_stories,omitempty" validate:"omitempty,min=1,max=12"`
	// SimilarityThreshold overrides the duplicate-detection threshold.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	// StatsWindowDays is the default reporting window for variant stats.
	StatsWindowDays int `json:"stats_window_days,omitempty" validate:"omitempty,min=1"`

	Verbose bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Used when no config
// file is given; a .env file loaded at CLI startup feeds these.
func FromEnv() *Config {
	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		EmbedModel:   os.Getenv("EMBED_MODEL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}
}

// Merge overlays non-zero values of other onto c and returns c.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	if other.GeminiAPIKey != "" {
		c.GeminiAPIKey = other.GeminiAPIKey
	}
	if other.EmbedModel != "" {
		c.EmbedModel = other.EmbedModel
	}
	if other.DatabaseURL != "" {
		c.DatabaseURL = other.DatabaseURL
	}
	if other.MaxStories != 0 {
		c.MaxStories = other.MaxStories
	}
	if other.SimilarityThreshold != 0 {
		c.SimilarityThreshold = other.SimilarityThreshold
	}
	if other.StatsWindowDays != 0 {
		c.StatsWindowDays = other.StatsWindowDays
	}
	if other.Verbose {
		c.Verbose = true
	}
	return c
}

// Validate checks field ranges using the struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
