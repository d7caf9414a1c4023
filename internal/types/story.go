// Package types provides type definitions for structured data used throughout the storyforge system.
package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits applied to stories at construction time. Validation applies the same
// caps when coercing raw model output, so a Story that exists is always in range.
const (
	// MaxTitleLen is the maximum length of a story title after normalization.
	MaxTitleLen = 160
	// MaxCriterionLen is the maximum length of a single acceptance criterion.
	MaxCriterionLen = 300
	// MaxCriteria is the maximum number of acceptance criteria per story.
	MaxCriteria = 12
)

// Story is a single user-value-oriented unit of work proposed for an epic.
type Story struct {
	Title              string   `json:"title"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// NewStory constructs a Story, enforcing the title and criteria invariants.
// The title is trimmed and truncated to MaxTitleLen; each criterion is trimmed,
// truncated to MaxCriterionLen, and empty criteria are dropped; the criteria
// list is capped at MaxCriteria. An empty title after trimming is an error.
func NewStory(title string, criteria []string) (Story, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Story{}, fmt.Errorf("story title is empty")
	}
	title = TruncateRunes(title, MaxTitleLen)

	cleaned := make([]string, 0, len(criteria))
	for _, c := range criteria {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		c = TruncateRunes(c, MaxCriterionLen)
		cleaned = append(cleaned, c)
		if len(cleaned) == MaxCriteria {
			break
		}
	}

	return Story{Title: title, AcceptanceCriteria: cleaned}, nil
}

// TruncateRunes cuts s to at most max runes. The length caps in this package
// are character counts, not byte counts; slicing bytes would split a
// multi-byte character and leave invalid UTF-8 in the envelope.
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// TitleKey returns the case-insensitive key used for duplicate-title checks.
func (s Story) TitleKey() string {
	return strings.ToLower(strings.TrimSpace(s.Title))
}

// EmbeddingText builds the canonical text embedded for similarity comparison:
// the title plus up to maxCriteria acceptance criteria, newline-joined.
func (s Story) EmbeddingText(maxCriteria int) string {
	parts := make([]string, 0, 1+maxCriteria)
	parts = append(parts, s.Title)
	for i, c := range s.AcceptanceCriteria {
		if i == maxCriteria {
			break
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n")
}

// CorpusItem is an existing persisted issue a new story batch is compared against.
type CorpusItem struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// EmbeddingText builds the corpus-side embedding text, mirroring Story.EmbeddingText.
func (c CorpusItem) EmbeddingText(maxCriteria int) string {
	s := Story{Title: c.Title, AcceptanceCriteria: c.AcceptanceCriteria}
	return s.EmbeddingText(maxCriteria)
}

// DuplicateMatch records a new story whose best corpus match crossed the
// similarity threshold.
type DuplicateMatch struct {
	StoryIndex    int     `json:"story_index"`
	StoryTitle    string  `json:"story_title"`
	ExistingTitle string  `json:"existing_title"`
	Similarity    float64 `json:"similarity"`
}
