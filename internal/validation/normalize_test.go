package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbeam/storyforge/internal/types"
)

func TestNormalize_DedupeAndTruncate(t *testing.T) {
	stories := []types.Story{
		{Title: "A"},
		{Title: "a"}, // duplicate, case-insensitive
		{Title: "B"},
		{Title: "C"},
	}
	out, warnings := Normalize(stories, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "B", out[1].Title)
	assert.Contains(t, warnings, "duplicate title removed: a")
	assert.Contains(t, warnings, "truncated to max_stories=2")
}

func TestNormalize_EmptyTitleRemoved(t *testing.T) {
	stories := []types.Story{{Title: "   "}, {Title: "Keep"}}
	out, warnings := Normalize(stories, 10)
	require.Len(t, out, 1)
	assert.Equal(t, "Keep", out[0].Title)
	assert.Contains(t, warnings, "empty title removed")
}

func TestNormalize_NoDuplicatesInOutput(t *testing.T) {
	stories := []types.Story{
		{Title: "Add search"},
		{Title: " add Search "},
		{Title: "ADD SEARCH"},
		{Title: "Other"},
	}
	out, _ := Normalize(stories, 10)
	seen := make(map[string]bool)
	for _, s := range out {
		key := s.TitleKey()
		assert.False(t, seen[key], "duplicate key %q in output", key)
		seen[key] = true
	}
	assert.Len(t, out, 2)
}

func TestNormalize_UnderCapNoTruncationWarning(t *testing.T) {
	out, warnings := Normalize([]types.Story{{Title: "A"}}, 5)
	assert.Len(t, out, 1)
	assert.Empty(t, warnings)
}
