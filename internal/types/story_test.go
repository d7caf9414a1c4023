package types

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStory_TrimsAndAccepts(t *testing.T) {
	story, err := NewStory("  User can log in  ", []string{" Shows login form ", ""})
	require.NoError(t, err)
	assert.Equal(t, "User can log in", story.Title)
	assert.Equal(t, []string{"Shows login form"}, story.AcceptanceCriteria)
}

func TestNewStory_EmptyTitle(t *testing.T) {
	_, err := NewStory("   ", nil)
	assert.Error(t, err)
}

func TestNewStory_TruncatesTitle(t *testing.T) {
	long := strings.Repeat("x", 200)
	story, err := NewStory(long, nil)
	require.NoError(t, err)
	assert.Len(t, story.Title, MaxTitleLen)
}

func TestNewStory_CapsCriteria(t *testing.T) {
	criteria := make([]string, 20)
	for i := range criteria {
		criteria[i] = strings.Repeat("c", 350)
	}
	story, err := NewStory("Title", criteria)
	require.NoError(t, err)
	assert.Len(t, story.AcceptanceCriteria, MaxCriteria)
	for _, c := range story.AcceptanceCriteria {
		assert.Len(t, c, MaxCriterionLen)
	}
}

func TestNewStory_TruncatesMultiByteAtRuneBoundary(t *testing.T) {
	// 200 three-byte runes: a byte slice at the cap would split a character.
	story, err := NewStory(strings.Repeat("需", 200), []string{strings.Repeat("求", 400)})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(story.Title))
	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(story.Title))

	require.Len(t, story.AcceptanceCriteria, 1)
	assert.True(t, utf8.ValidString(story.AcceptanceCriteria[0]))
	assert.Equal(t, MaxCriterionLen, utf8.RuneCountInString(story.AcceptanceCriteria[0]))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "需求", TruncateRunes("需求分析", 2))
	assert.Equal(t, "", TruncateRunes("abc", 0))
}

func TestTitleKey_CaseInsensitive(t *testing.T) {
	a := Story{Title: "  Add Search "}
	b := Story{Title: "add search"}
	assert.Equal(t, a.TitleKey(), b.TitleKey())
}

func TestEmbeddingText_CapsCriteria(t *testing.T) {
	story := Story{
		Title:              "Title",
		AcceptanceCriteria: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	}
	text := story.EmbeddingText(6)
	lines := strings.Split(text, "\n")
	assert.Len(t, lines, 7) // title + 6 criteria
	assert.Equal(t, "Title", lines[0])
	assert.NotContains(t, lines, "g")
}

func TestPromptVariant_Eligible(t *testing.T) {
	assert.True(t, PromptVariant{Active: true}.Eligible())
	assert.False(t, PromptVariant{Active: true, Archived: true}.Eligible())
	assert.False(t, PromptVariant{Active: false}.Eligible())
}
