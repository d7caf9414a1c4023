package types

import "time"

// DecomposeResult is the envelope returned to callers after a decomposition or
// regeneration run. QualityScore is derived from the batch content and is
// recomputed whenever stories change; it is never read back from storage.
type DecomposeResult struct {
	Success          bool             `json:"success"`
	Stories          []Story          `json:"stories"`
	Warnings         []string         `json:"warnings"`
	DuplicateMatches []DuplicateMatch `json:"duplicate_matches"`
	QualityScore     float64          `json:"quality_score"`
	Stub             bool             `json:"stub"`
	GeneratedAt      time.Time        `json:"generated_at"`
}
