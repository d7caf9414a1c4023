// Package main provides the storyforge CLI: operator tooling around the epic
// decomposition core (decompose raw model output, allocate prompt variants,
// report variant experiment stats).
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storyforge",
	Short: "Epic decomposition toolkit",
	Long:  "StoryForge validates, deduplicates and scores LLM-generated user stories, and runs the prompt-variant experiment tooling.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
