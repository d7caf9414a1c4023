package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/planbeam/storyforge/internal/types"
)

func TestPrintDecomposeResult(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintDecomposeResult(&types.DecomposeResult{
		Success:      true,
		QualityScore: 0.9,
		Stories: []types.Story{
			{Title: "User signs in", AcceptanceCriteria: []string{"a", "b", "c", "d", "e"}},
		},
		Warnings: []string{"duplicate title removed: x"},
		DuplicateMatches: []types.DuplicateMatch{
			{StoryTitle: "User signs in", ExistingTitle: "Login works", Similarity: 0.91},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "User signs in")
	assert.Contains(t, out, "and 1 more")
	assert.Contains(t, out, "duplicate title removed: x")
	assert.Contains(t, out, "Login works")
}

func TestPrintDecomposeResult_LongMultiByteLineStaysValidUTF8(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDecomposeResult(&types.DecomposeResult{
		Success: true,
		Stories: []types.Story{
			{Title: strings.Repeat("需", 80), AcceptanceCriteria: []string{"ok"}},
		},
	})

	out := buf.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "...")
}

func TestPrintDecomposeResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDecomposeResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAllocation(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()
	NewPrinter(&buf).PrintAllocation(types.Allocation{ChosenVariantID: id, Reason: "requested"})
	assert.Contains(t, buf.String(), "requested")
}

func TestPrintVariantStats(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVariantStats([]types.VariantStats{
		{VariantID: uuid.New(), Runs: 12, MeanQuality: 0.8, BayesianMean: 0.77, CILow: 0.6, CIHigh: 0.9},
	})
	out := buf.String()
	assert.Contains(t, out, "runs")
	assert.Contains(t, out, "12")
}
