// Package validation turns parsed model output into well-formed stories,
// collecting warnings instead of failing: schema coercion, acceptance-criteria
// linting, and batch normalization (dedupe + ceiling).
package validation

import (
	"fmt"
	"strings"

	"github.com/planbeam/storyforge/internal/types"
)

// ValidateSchema type-checks a parsed object into a list of Story candidates.
// A nil story slice signals an unusable schema (wrong root type, missing
// stories list, or no valid entries); the caller must fall back to a stub
// batch. Per-entry defects are skipped with a warning and the batch continues.
func ValidateSchema(parsed any) ([]types.Story, []string) {
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, []string{"parsed root not object"}
	}
	rawStories, ok := root["stories"].([]any)
	if !ok {
		return nil, []string{"missing stories list"}
	}

	var warnings []string
	stories := make([]types.Story, 0, len(rawStories))
	for i, entry := range rawStories {
		m, isMap := entry.(map[string]any)
		title, _ := m["title"].(string)
		if !isMap || strings.TrimSpace(title) == "" {
			warnings = append(warnings, fmt.Sprintf("story %d invalid title; skipped", i+1))
			continue
		}

		criteria := coerceCriteria(m["acceptance_criteria"])

		// Lint before the 12-item cap so oversized lists are still reported.
		story, err := types.NewStory(title, criteria)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("story %d invalid title; skipped", i+1))
			continue
		}
		for _, w := range LintCriteria(criteria) {
			warnings = append(warnings, fmt.Sprintf("%s: %s", story.Title, w))
		}
		stories = append(stories, story)
	}

	if len(stories) == 0 {
		warnings = append(warnings, "no valid stories found")
		return nil, warnings
	}
	return stories, warnings
}

// coerceCriteria normalizes the raw acceptance_criteria value into a clean
// string list. A bare string is wrapped into a one-element list; non-sequence
// values are dropped. Every entry is split on newlines, trimmed, truncated to
// the criterion length cap, and empty results are removed.
func coerceCriteria(raw any) []string {
	var entries []string
	switch v := raw.(type) {
	case string:
		entries = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				entries = append(entries, s)
			}
		}
	case []string:
		entries = v
	}

	var out []string
	for _, entry := range entries {
		for _, line := range strings.Split(entry, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			line = types.TruncateRunes(line, types.MaxCriterionLen)
			out = append(out, line)
		}
	}
	return out
}
