package validation

import (
	"fmt"

	"github.com/planbeam/storyforge/internal/types"
)

// Normalize deduplicates story titles (case-insensitive) and enforces the
// story-count ceiling. Callers clamp maxCount before calling: [3, 12] for a
// full decomposition, 1 for single-story regeneration.
func Normalize(stories []types.Story, maxCount int) ([]types.Story, []string) {
	var warnings []string
	seen := make(map[string]struct{}, len(stories))
	accepted := make([]types.Story, 0, len(stories))

	for _, story := range stories {
		key := story.TitleKey()
		if key == "" {
			warnings = append(warnings, "empty title removed")
			continue
		}
		if _, dup := seen[key]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate title removed: %s", story.Title))
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, story)
	}

	if len(accepted) > maxCount {
		warnings = append(warnings, fmt.Sprintf("truncated to max_stories=%d", maxCount))
		accepted = accepted[:maxCount]
	}
	return accepted, warnings
}
