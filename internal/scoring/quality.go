// Package scoring blends batch-level signals into a single quality score used
// to compare prompt variants. The score is derived data: recompute it whenever
// story content changes, never trust a persisted copy.
package scoring

import (
	"math"

	"github.com/planbeam/storyforge/internal/types"
)

// Weights for the quality blend. Heuristic tuning values.
const (
	distinctnessWeight    = 0.35
	criteriaDensityWeight = 0.25
	warningPenaltyWeight  = 0.25
	structureValidWeight  = 0.15

	// CriteriaDensityDivisor is the criteria-per-story count treated as full density.
	CriteriaDensityDivisor = 6.0
	// WarningPenaltyDivisor is the warnings-per-story count treated as total loss.
	WarningPenaltyDivisor = 5.0
)

// Score blends the four quality inputs, each clamped to [0,1], and rounds the
// result to 3 decimals.
func Score(distinctness, criteriaDensity, warningPenalty, structureValid float64) float64 {
	score := distinctnessWeight*clamp01(distinctness) +
		criteriaDensityWeight*clamp01(criteriaDensity) +
		warningPenaltyWeight*clamp01(warningPenalty) +
		structureValidWeight*clamp01(structureValid)
	return math.Round(score*1000) / 1000
}

// ScoreBatch derives the four inputs from a finished batch and scores it.
// structureValid reports whether the batch passed schema validation (false
// means the stub fallback was used).
func ScoreBatch(stories []types.Story, warnings []string, duplicates []types.DuplicateMatch, structureValid bool) float64 {
	if len(stories) == 0 {
		return Score(0, 0, 0, boolToFloat(structureValid))
	}

	total := float64(len(stories))
	distinctness := 1 - float64(len(duplicates))/total

	criteriaCount := 0
	for _, s := range stories {
		criteriaCount += len(s.AcceptanceCriteria)
	}
	criteriaDensity := math.Min(1, float64(criteriaCount)/total/CriteriaDensityDivisor)

	warningsPerStory := float64(len(warnings)) / total
	warningPenalty := 1 - math.Min(1, warningsPerStory/WarningPenaltyDivisor)

	return Score(distinctness, criteriaDensity, warningPenalty, boolToFloat(structureValid))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
