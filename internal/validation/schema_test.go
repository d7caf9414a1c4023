package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_Valid(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "User sees dashboard", "acceptance_criteria": []any{"Shows key metrics", "Loads under 2s"}},
			map[string]any{"title": "User edits profile", "acceptance_criteria": []any{"Can change name"}},
		},
	}
	stories, warnings := ValidateSchema(parsed)
	require.NotNil(t, stories)
	assert.Len(t, stories, 2)
	for _, w := range warnings {
		assert.NotContains(t, w, "invalid")
	}
}

func TestValidateSchema_InvalidRoot(t *testing.T) {
	for _, parsed := range []any{nil, []any{}, "text", 42} {
		stories, warnings := ValidateSchema(parsed)
		assert.Nil(t, stories)
		assert.Contains(t, warnings, "parsed root not object")
	}
}

func TestValidateSchema_MissingStories(t *testing.T) {
	stories, warnings := ValidateSchema(map[string]any{"epic": "x"})
	assert.Nil(t, stories)
	assert.Contains(t, warnings, "missing stories list")
}

func TestValidateSchema_SkipsBadEntries(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			"not a map",
			map[string]any{"title": "   "},
			map[string]any{"title": "Good", "acceptance_criteria": []any{"works"}},
		},
	}
	stories, warnings := ValidateSchema(parsed)
	require.Len(t, stories, 1)
	assert.Equal(t, "Good", stories[0].Title)
	assert.Contains(t, warnings, "story 1 invalid title; skipped")
	assert.Contains(t, warnings, "story 2 invalid title; skipped")
}

func TestValidateSchema_NoValidEntries(t *testing.T) {
	parsed := map[string]any{"stories": []any{map[string]any{"title": ""}}}
	stories, warnings := ValidateSchema(parsed)
	assert.Nil(t, stories)
	assert.Contains(t, warnings, "no valid stories found")
}

func TestValidateSchema_StringCriterionWrapped(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "T", "acceptance_criteria": "single criterion"},
		},
	}
	stories, _ := ValidateSchema(parsed)
	require.Len(t, stories, 1)
	assert.Equal(t, []string{"single criterion"}, stories[0].AcceptanceCriteria)
}

func TestValidateSchema_NewlineSplitAndTruncate(t *testing.T) {
	long := strings.Repeat("a", 320)
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "T", "acceptance_criteria": []any{"one\n two \n\n", long}},
		},
	}
	stories, _ := ValidateSchema(parsed)
	require.Len(t, stories, 1)
	criteria := stories[0].AcceptanceCriteria
	require.Len(t, criteria, 3)
	assert.Equal(t, "one", criteria[0])
	assert.Equal(t, "two", criteria[1])
	assert.Len(t, criteria[2], 300)
}

func TestValidateSchema_MultiByteCriterionTruncatedCleanly(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "T", "acceptance_criteria": []any{strings.Repeat("需", 400)}},
		},
	}
	stories, _ := ValidateSchema(parsed)
	require.Len(t, stories, 1)
	criterion := stories[0].AcceptanceCriteria[0]
	assert.True(t, utf8.ValidString(criterion))
	assert.Equal(t, 300, utf8.RuneCountInString(criterion))
}

func TestValidateSchema_NonSequenceCriteriaDropped(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "T", "acceptance_criteria": 12.5},
		},
	}
	stories, warnings := ValidateSchema(parsed)
	require.Len(t, stories, 1)
	assert.Empty(t, stories[0].AcceptanceCriteria)
	// Empty criteria list still draws a lint warning prefixed with the title.
	assert.Contains(t, warnings, "T: acceptance criteria empty")
}

func TestValidateSchema_LintWarningsPrefixedWithTitle(t *testing.T) {
	parsed := map[string]any{
		"stories": []any{
			map[string]any{"title": "Search", "acceptance_criteria": []any{"System should maybe work"}},
		},
	}
	_, warnings := ValidateSchema(parsed)
	found := false
	for _, w := range warnings {
		if strings.HasPrefix(w, "Search: ") && strings.Contains(w, "vague term") {
			found = true
		}
	}
	assert.True(t, found, "expected title-prefixed vague term warning, got %v", warnings)
}
