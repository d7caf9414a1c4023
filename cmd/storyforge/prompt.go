package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/planbeam/storyforge/internal/pipeline"
	"github.com/planbeam/storyforge/internal/prompts"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the built-in decomposition prompt for an epic",
	Long:  "Formats the built-in prompt template with the epic text and story bounds, for piping into a model call. With --story, renders the single-story regeneration prompt instead.",
	RunE:  runPrompt,
}

var (
	promptEpic       string
	promptStory      string
	promptMaxStories int
)

func init() {
	promptCmd.Flags().StringVar(&promptEpic, "epic", "", "Epic title and description (required)")
	promptCmd.Flags().StringVar(&promptStory, "story", "", "Story to replace; switches to the regeneration prompt")
	promptCmd.Flags().IntVar(&promptMaxStories, "max-stories", pipeline.DefaultStories, "Upper bound on stories to request")

	if err := promptCmd.MarkFlagRequired("epic"); err != nil {
		panic(fmt.Sprintf("failed to mark epic flag as required: %v", err))
	}

	rootCmd.AddCommand(promptCmd)
}

func runPrompt(_ *cobra.Command, _ []string) error {
	if promptStory != "" {
		fmt.Println(prompts.Format(prompts.DefaultRegenerateTemplate(), map[string]string{
			"Epic":  promptEpic,
			"Story": promptStory,
		}))
		return nil
	}

	maxStories := promptMaxStories
	if maxStories < pipeline.MinStories {
		maxStories = pipeline.MinStories
	}
	if maxStories > pipeline.MaxStories {
		maxStories = pipeline.MaxStories
	}
	fmt.Println(prompts.Format(prompts.DefaultDecomposeTemplate(), map[string]string{
		"Epic":       promptEpic,
		"MinStories": strconv.Itoa(pipeline.MinStories),
		"MaxStories": strconv.Itoa(maxStories),
	}))
	return nil
}
