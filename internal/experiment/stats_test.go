package experiment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbeam/storyforge/internal/types"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return &Engine{Now: func() time.Time { return testNow }}
}

func scorePtr(v float64) *float64 { return &v }

func makeRuns(variantID uuid.UUID, count int, quality float64, startedAt time.Time) []types.ExperimentRun {
	runs := make([]types.ExperimentRun, count)
	for i := range runs {
		runs[i] = types.ExperimentRun{
			VariantID:    variantID,
			QualityScore: scorePtr(quality),
			StartedAt:    startedAt.Add(-time.Duration(i) * time.Hour),
		}
	}
	return runs
}

func TestStats_TwoVariantsRankedAndLift(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	runs := append(
		makeRuns(a, 10, 0.9, testNow.Add(-time.Hour)),
		makeRuns(b, 10, 0.5, testNow.Add(-time.Hour))...,
	)

	stats := testEngine().Stats(runs, 30)
	require.Len(t, stats, 2)

	// A ranks first with the higher bayesian mean.
	assert.Equal(t, a, stats[0].VariantID)
	assert.Greater(t, stats[0].BayesianMean, stats[1].BayesianMean)

	// The leader's lift is zero; the trailer's is negative.
	assert.Equal(t, 0.0, stats[0].RelativeLiftPct)
	assert.Negative(t, stats[1].RelativeLiftPct)

	assert.Equal(t, 10, stats[0].Runs)
	assert.InDelta(t, 0.9, stats[0].MeanQuality, 1e-9)
}

func TestStats_BayesianPosterior(t *testing.T) {
	a := uuid.New()
	// 4 runs at quality 0.75: s = 3, alpha = 4, beta = 1+4-3 = 2.
	stats := testEngine().Stats(makeRuns(a, 4, 0.75, testNow.Add(-time.Hour)), 30)
	require.Len(t, stats, 1)
	assert.InDelta(t, 4.0/6.0, stats[0].BayesianMean, 1e-9)
	assert.GreaterOrEqual(t, stats[0].CILow, 0.0)
	assert.LessOrEqual(t, stats[0].CIHigh, 1.0)
	assert.Less(t, stats[0].CILow, stats[0].BayesianMean)
	assert.Greater(t, stats[0].CIHigh, stats[0].BayesianMean)
}

func TestStats_CIWidthShrinksWithSamples(t *testing.T) {
	engine := testEngine()
	a := uuid.New()

	widths := make([]float64, 0, 3)
	for _, n := range []int{5, 20, 80} {
		stats := engine.Stats(makeRuns(a, n, 0.7, testNow.Add(-time.Hour)), 0)
		require.Len(t, stats, 1)
		widths = append(widths, stats[0].CIHigh-stats[0].CILow)
	}
	assert.Greater(t, widths[0], widths[1])
	assert.Greater(t, widths[1], widths[2])
}

func TestStats_WindowFiltersOldRuns(t *testing.T) {
	a := uuid.New()
	recent := makeRuns(a, 3, 0.8, testNow.Add(-24*time.Hour))
	stale := makeRuns(a, 5, 0.1, testNow.Add(-90*24*time.Hour))

	stats := testEngine().Stats(append(recent, stale...), 30)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].Runs)
	assert.InDelta(t, 0.8, stats[0].MeanQuality, 1e-9)
}

func TestStats_UnscoredRunsExcluded(t *testing.T) {
	a := uuid.New()
	runs := []types.ExperimentRun{
		{VariantID: a, QualityScore: nil, StartedAt: testNow},
		{VariantID: a, QualityScore: scorePtr(0.6), StartedAt: testNow},
	}
	stats := testEngine().Stats(runs, 30)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Runs)
}

func TestStats_ScoresClamped(t *testing.T) {
	a := uuid.New()
	runs := []types.ExperimentRun{
		{VariantID: a, QualityScore: scorePtr(1.7), StartedAt: testNow},
		{VariantID: a, QualityScore: scorePtr(-0.3), StartedAt: testNow},
	}
	stats := testEngine().Stats(runs, 30)
	require.Len(t, stats, 1)
	assert.InDelta(t, 0.5, stats[0].MeanQuality, 1e-9)
}

func TestStats_DailyTimeseries(t *testing.T) {
	a := uuid.New()
	day1 := time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	runs := []types.ExperimentRun{
		{VariantID: a, QualityScore: scorePtr(0.4), StartedAt: day1},
		{VariantID: a, QualityScore: scorePtr(0.6), StartedAt: day1.Add(2 * time.Hour)},
		{VariantID: a, QualityScore: scorePtr(1.0), StartedAt: day2},
	}

	stats := testEngine().Stats(runs, 30)
	require.Len(t, stats, 1)
	daily := stats[0].Daily
	require.Len(t, daily, 2)

	assert.Equal(t, "2026-08-18", daily[0].Date)
	assert.Equal(t, 2, daily[0].Runs)
	assert.InDelta(t, 0.5, daily[0].MeanQuality, 1e-9)

	assert.Equal(t, "2026-08-19", daily[1].Date)
	assert.Equal(t, 1, daily[1].Runs)
	assert.InDelta(t, 1.0, daily[1].MeanQuality, 1e-9)
}

func TestStats_Empty(t *testing.T) {
	assert.Empty(t, testEngine().Stats(nil, 30))
}

func TestStats_AllOnes(t *testing.T) {
	a := uuid.New()
	// Every score 1.0: the prior keeps the posterior mean below 1.
	stats := testEngine().Stats(makeRuns(a, 5, 1.0, testNow.Add(-time.Hour)), 0)
	require.Len(t, stats, 1)
	assert.LessOrEqual(t, stats[0].BayesianMean, 1.0)
	assert.GreaterOrEqual(t, stats[0].CIHigh, stats[0].BayesianMean)
}
