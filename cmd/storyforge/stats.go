package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/planbeam/storyforge/internal/db"
	"github.com/planbeam/storyforge/internal/experiment"
	"github.com/planbeam/storyforge/internal/observability"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report per-variant experiment statistics",
	Long:  "Aggregates scored runs in the window into per-variant statistics (mean quality, Bayesian posterior mean, 95% CI, relative lift, daily series) and prints them as JSON, best variant first.",
	RunE:  runStats,
}

var (
	statsWorkspaceID string
	statsWindowDays  int
	statsVerbose     bool
)

func init() {
	statsCmd.Flags().StringVar(&statsWorkspaceID, "workspace-id", "", "Workspace UUID (required)")
	statsCmd.Flags().IntVar(&statsWindowDays, "window", 30, "Window in days")
	statsCmd.Flags().BoolVarP(&statsVerbose, "verbose", "v", false, "Print a formatted table to stderr")

	if err := statsCmd.MarkFlagRequired("workspace-id"); err != nil {
		panic(fmt.Sprintf("failed to mark workspace-id flag as required: %v", err))
	}

	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	workspaceID, err := uuid.Parse(statsWorkspaceID)
	if err != nil {
		return fmt.Errorf("invalid workspace-id: %w", err)
	}
	if statsWindowDays <= 0 {
		return fmt.Errorf("window must be positive, got %d", statsWindowDays)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, workspaceID, statsWindowDays)
	if err != nil {
		return err
	}

	stats := experiment.NewEngine().Stats(runs, statsWindowDays)

	if statsVerbose {
		observability.NewPrinter(os.Stderr).PrintVariantStats(stats)
	}

	payload, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	fmt.Println(string(payload))
	return nil
}
