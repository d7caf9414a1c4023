package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/planbeam/storyforge/internal/types"
)

// LintMaxCriterionLen is the length above which a criterion draws a warning.
// Shorter than the hard 300-char cap so writers get a nudge before truncation.
const LintMaxCriterionLen = 260

// vagueTerms are tokens that make an acceptance criterion untestable.
var vagueTerms = map[string]struct{}{
	"should":      {},
	"maybe":       {},
	"could":       {},
	"some":        {},
	"various":     {},
	"appropriate": {},
}

// LintCriteria flags vague, missing, or oversized acceptance criteria.
// Warnings are advisory; they feed the quality score but never block a batch.
func LintCriteria(criteria []string) []string {
	var warnings []string
	if len(criteria) == 0 {
		warnings = append(warnings, "acceptance criteria empty")
	}
	if len(criteria) > types.MaxCriteria {
		warnings = append(warnings, fmt.Sprintf("acceptance criteria exceeds %d items", types.MaxCriteria))
	}
	for i, criterion := range criteria {
		if term, found := findVagueTerm(criterion); found {
			warnings = append(warnings, fmt.Sprintf("criterion %d contains vague term %q", i+1, term))
		}
		if utf8.RuneCountInString(criterion) > LintMaxCriterionLen {
			warnings = append(warnings, fmt.Sprintf("criterion %d exceeds %d characters", i+1, LintMaxCriterionLen))
		}
	}
	return warnings
}

// findVagueTerm returns the first whitespace-delimited token of the criterion
// that case-insensitively matches the vague-term set.
func findVagueTerm(criterion string) (string, bool) {
	for _, token := range strings.Fields(criterion) {
		if _, ok := vagueTerms[strings.ToLower(token)]; ok {
			return token, true
		}
	}
	return "", false
}
