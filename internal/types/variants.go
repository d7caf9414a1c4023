package types

import (
	"time"

	"github.com/google/uuid"
)

// PromptVariant is a named alternative instruction template used for controlled
// experimentation. The core only reads variants; lifecycle changes (activation,
// archival) happen in the admin surface.
type PromptVariant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Template      string    `json:"template"`
	Active        bool      `json:"active"`
	IsDefault     bool      `json:"is_default"`
	TrafficWeight float64   `json:"traffic_weight"`
	Archived      bool      `json:"archived"`
}

// Eligible reports whether the variant may be chosen by the allocator.
func (v PromptVariant) Eligible() bool {
	return v.Active && !v.Archived
}

// ExperimentRun is a read-only historical record of one generation run.
// QualityScore is nil when the run never produced a scored batch.
type ExperimentRun struct {
	VariantID    uuid.UUID `json:"variant_id"`
	QualityScore *float64  `json:"quality_score,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

// Allocation is the allocator's answer: which variant to use and why.
// ChosenVariantID is uuid.Nil when no eligible variant exists.
type Allocation struct {
	ChosenVariantID uuid.UUID `json:"chosen_variant_id"`
	Reason          string    `json:"reason"`
}

// DailyStat is one calendar-day bucket of run quality for a variant.
type DailyStat struct {
	Date        string  `json:"date"`
	Runs        int     `json:"runs"`
	MeanQuality float64 `json:"mean_quality"`
}

// VariantStats is the per-variant aggregate computed on demand from the run
// history window. It is derived data and never persisted.
type VariantStats struct {
	VariantID       uuid.UUID   `json:"variant_id"`
	Runs            int         `json:"runs"`
	MeanQuality     float64     `json:"mean_quality"`
	BayesianMean    float64     `json:"bayesian_mean"`
	CILow           float64     `json:"ci_low"`
	CIHigh          float64     `json:"ci_high"`
	RelativeLiftPct float64     `json:"relative_lift_pct"`
	Daily           []DailyStat `json:"daily_timeseries,omitempty"`
}
