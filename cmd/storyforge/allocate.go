package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/planbeam/storyforge/internal/allocation"
	"github.com/planbeam/storyforge/internal/db"
	"github.com/planbeam/storyforge/internal/observability"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Pick the prompt variant for the next generation run",
	Long:  "Runs the bandit allocator over the workspace's active prompt variants and recent scored runs, printing the chosen variant id and reason.",
	RunE:  runAllocate,
}

var (
	allocateWorkspaceID string
	allocateVariantID   string
	allocateSeed        int64
	allocateVerbose     bool
)

func init() {
	allocateCmd.Flags().StringVar(&allocateWorkspaceID, "workspace-id", "", "Workspace UUID (required)")
	allocateCmd.Flags().StringVar(&allocateVariantID, "variant", "", "Requested variant UUID; honored when active and not archived")
	allocateCmd.Flags().Int64Var(&allocateSeed, "seed", 0, "Random seed (0 = time-based)")
	allocateCmd.Flags().BoolVarP(&allocateVerbose, "verbose", "v", false, "Print a formatted summary to stderr")

	if err := allocateCmd.MarkFlagRequired("workspace-id"); err != nil {
		panic(fmt.Sprintf("failed to mark workspace-id flag as required: %v", err))
	}

	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	workspaceID, err := uuid.Parse(allocateWorkspaceID)
	if err != nil {
		return fmt.Errorf("invalid workspace-id: %w", err)
	}

	var requested *uuid.UUID
	if allocateVariantID != "" {
		id, err := uuid.Parse(allocateVariantID)
		if err != nil {
			return fmt.Errorf("invalid variant id: %w", err)
		}
		requested = &id
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

	variants, err := database.ListVariants(ctx, workspaceID)
	if err != nil {
		return err
	}
	runs, err := database.ListRecentScoredRuns(ctx, workspaceID, allocation.RunWindow)
	if err != nil {
		return err
	}

	seed := allocateSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	allocator := allocation.NewAllocator(rand.New(rand.NewSource(seed)))
	result := allocator.Select(requested, variants, runs)

	if allocateVerbose {
		observability.NewPrinter(os.Stderr).PrintAllocation(result)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal allocation: %w", err)
	}
	fmt.Println(string(payload))
	return nil
}
