// Package experiment aggregates historical run records into per-variant
// statistics for reporting: Bayesian posterior means, confidence intervals,
// relative lift against the best variant, and daily quality time series.
package experiment

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planbeam/storyforge/internal/types"
)

const (
	// z95 is the normal z-value for a 95% confidence interval.
	z95 = 1.96
	// betaFloor keeps the Beta posterior parameter strictly positive when
	// every observed score is 1.
	betaFloor = 1e-6
)

// Engine computes variant statistics. Now is injectable for window tests.
type Engine struct {
	Now func() time.Time
}

// NewEngine returns an Engine using wall-clock time.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Stats filters runs to the window (windowDays <= 0 disables the filter) and
// to those carrying a quality score, then computes per-variant aggregates.
// Scores are treated as fractional successes under a Beta(1,1) prior. Output
// is sorted by bayesian mean, descending.
func (e *Engine) Stats(runs []types.ExperimentRun, windowDays int) []types.VariantStats {
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = e.Now().AddDate(0, 0, -windowDays)
	}

	type bucket struct {
		n     int
		sum   float64
		daily map[string]*types.DailyStat
	}
	buckets := make(map[uuid.UUID]*bucket)

	for _, r := range runs {
		if r.QualityScore == nil {
			continue
		}
		if windowDays > 0 && r.StartedAt.Before(cutoff) {
			continue
		}
		score := clamp01(*r.QualityScore)

		b := buckets[r.VariantID]
		if b == nil {
			b = &bucket{daily: make(map[string]*types.DailyStat)}
			buckets[r.VariantID] = b
		}
		b.n++
		b.sum += score

		day := r.StartedAt.UTC().Format("2006-01-02")
		d := b.daily[day]
		if d == nil {
			d = &types.DailyStat{Date: day}
			b.daily[day] = d
		}
		// MeanQuality accumulates the sum here; finalized below.
		d.Runs++
		d.MeanQuality += score
	}

	stats := make([]types.VariantStats, 0, len(buckets))
	for variantID, b := range buckets {
		n := float64(b.n)
		s := b.sum
		mean := s / n

		alpha := 1 + s
		beta := math.Max(betaFloor, 1+n-s)
		bayesianMean := alpha / (alpha + beta)
		variance := alpha * beta / ((alpha + beta) * (alpha + beta) * (alpha + beta + 1))
		margin := z95 * math.Sqrt(variance)

		daily := make([]types.DailyStat, 0, len(b.daily))
		for _, d := range b.daily {
			d.MeanQuality /= float64(d.Runs)
			daily = append(daily, *d)
		}
		sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

		stats = append(stats, types.VariantStats{
			VariantID:    variantID,
			Runs:         b.n,
			MeanQuality:  mean,
			BayesianMean: bayesianMean,
			CILow:        clamp01(bayesianMean - margin),
			CIHigh:       clamp01(bayesianMean + margin),
			Daily:        daily,
		})
	}

	maxBayesian := 0.0
	for _, s := range stats {
		maxBayesian = math.Max(maxBayesian, s.BayesianMean)
	}
	if maxBayesian > 0 {
		for i := range stats {
			lift := (stats[i].BayesianMean/maxBayesian - 1) * 100
			stats[i].RelativeLiftPct = math.Round(lift*100) / 100
		}
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].BayesianMean > stats[j].BayesianMean })
	return stats
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
