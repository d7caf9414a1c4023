// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/planbeam/storyforge/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxCriteriaToShow caps how many criteria are listed per story
	maxCriteriaToShow = 4
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDecomposeResult outputs a human-readable summary of a decomposition envelope.
func (p *Printer) PrintDecomposeResult(result *types.DecomposeResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Success:  %t (stub=%t)\n", result.Success, result.Stub))
	sb.WriteString(fmt.Sprintf("Quality:  %.3f\n", result.QualityScore))
	sb.WriteString(fmt.Sprintf("Stories:  %d\n", len(result.Stories)))
	sb.WriteString("\n")

	for i, story := range result.Stories {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, story.Title))
		for j, criterion := range story.AcceptanceCriteria {
			if j == maxCriteriaToShow {
				sb.WriteString(fmt.Sprintf("   ... and %d more\n", len(story.AcceptanceCriteria)-maxCriteriaToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("   - %s\n", criterion))
		}
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("  ! %s\n", w))
		}
	}
	if len(result.DuplicateMatches) > 0 {
		sb.WriteString("\nPossible duplicates:\n")
		for _, m := range result.DuplicateMatches {
			sb.WriteString(fmt.Sprintf("  ~ %q vs existing %q (%.2f)\n", m.StoryTitle, m.ExistingTitle, m.Similarity))
		}
	}

	p.printBox("Decomposition Result", strings.TrimRight(sb.String(), "\n"))
}

// PrintAllocation outputs the allocator's decision.
func (p *Printer) PrintAllocation(allocation types.Allocation) {
	content := fmt.Sprintf("Variant:  %s\nReason:   %s", allocation.ChosenVariantID, allocation.Reason)
	p.printBox("Variant Allocation", content)
}

// PrintVariantStats outputs a per-variant stats table sorted as given
// (highest bayesian mean first).
func (p *Printer) PrintVariantStats(stats []types.VariantStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s %5s %7s %7s %15s %8s\n", "variant", "runs", "mean", "bayes", "95% CI", "lift%"))
	for _, s := range stats {
		short := s.VariantID.String()
		if len(short) > 8 {
			short = short[:8]
		}
		sb.WriteString(fmt.Sprintf("%-10s %5d %7.3f %7.3f [%5.3f,%5.3f] %8.2f\n",
			short, s.Runs, s.MeanQuality, s.BayesianMean, s.CILow, s.CIHigh, s.RelativeLiftPct))
	}
	p.printBox("Prompt Variant Performance", strings.TrimRight(sb.String(), "\n"))
}
