// Package allocation picks the prompt variant for the next generation run.
// Selection is a single weighted-random draw combining configured traffic
// share with live empirical quality (mean score plus a UCB1-style exploration
// bonus), so good variants win traffic while undersampled ones keep getting
// tried.
package allocation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/planbeam/storyforge/internal/types"
)

// Heuristic tuning values; override via the Allocator fields.
const (
	// DefaultTrafficWeight substitutes for a missing (zero) traffic weight.
	DefaultTrafficWeight = 1.0
	// MinBaseWeight keeps every eligible variant drawable.
	MinBaseWeight = 0.0001
	// DefaultVariantBoost multiplies the base weight of the default variant.
	DefaultVariantBoost = 1.2
	// RunWindow is how many recent scored runs feed the empirical weights.
	RunWindow = 200
	// PriorMeanQuality is assumed for a variant with no scored runs yet.
	PriorMeanQuality = 0.5
)

// Allocator selects prompt variants. The random source is injected so tests
// can assert exact outcomes for fixed seeds.
type Allocator struct {
	rng *rand.Rand

	Boost     float64 // default-variant multiplier
	RunWindow int     // recent-run cap
}

// NewAllocator creates an Allocator drawing from the given source.
func NewAllocator(rng *rand.Rand) *Allocator {
	return &Allocator{rng: rng, Boost: DefaultVariantBoost, RunWindow: RunWindow}
}

// Select returns the variant to use for the next run. A requested variant that
// exists and is eligible short-circuits the draw. With no eligible variants the
// returned allocation carries uuid.Nil; the caller proceeds untagged.
func (a *Allocator) Select(requested *uuid.UUID, variants []types.PromptVariant, runs []types.ExperimentRun) types.Allocation {
	if requested != nil {
		for _, v := range variants {
			if v.ID == *requested && v.Eligible() {
				return types.Allocation{ChosenVariantID: v.ID, Reason: "requested"}
			}
		}
	}

	var candidates []types.PromptVariant
	for _, v := range variants {
		if v.Eligible() {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return types.Allocation{ChosenVariantID: uuid.Nil, Reason: "no eligible variants"}
	}

	samples, total := a.collectSamples(runs)
	weights := make([]float64, len(candidates))
	totalWeight := 0.0
	for i, v := range candidates {
		weights[i] = a.compositeWeight(v, samples[v.ID], total)
		totalWeight += weights[i]
	}

	if totalWeight <= 0 {
		return types.Allocation{ChosenVariantID: candidates[0].ID, Reason: "deterministic fallback"}
	}

	draw := a.rng.Float64() * totalWeight
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if draw < cumulative {
			return types.Allocation{ChosenVariantID: candidates[i].ID, Reason: "weighted bandit draw"}
		}
	}
	// Float accumulation can leave the draw a hair past the last bucket.
	return types.Allocation{ChosenVariantID: candidates[len(candidates)-1].ID, Reason: "weighted bandit draw"}
}

// sample is the per-variant aggregate over the considered run window.
type sample struct {
	n   int
	sum float64
}

// collectSamples groups the most recent scored runs (up to RunWindow) by
// variant and returns the per-variant aggregates plus the total considered.
func (a *Allocator) collectSamples(runs []types.ExperimentRun) (map[uuid.UUID]sample, int) {
	scored := make([]types.ExperimentRun, 0, len(runs))
	for _, r := range runs {
		if r.QualityScore != nil {
			scored = append(scored, r)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].StartedAt.After(scored[j].StartedAt)
	})
	if len(scored) > a.RunWindow {
		scored = scored[:a.RunWindow]
	}

	samples := make(map[uuid.UUID]sample, len(scored))
	for _, r := range scored {
		s := samples[r.VariantID]
		s.n++
		s.sum += *r.QualityScore
		samples[r.VariantID] = s
	}
	return samples, len(scored)
}

// compositeWeight combines the configured base weight with empirical quality
// and a UCB1-style exploration bonus. The bonus applies only while the variant
// has fewer samples than the whole window, a staleness tolerance that zeroes it
// when one variant owns every considered run.
func (a *Allocator) compositeWeight(v types.PromptVariant, s sample, total int) float64 {
	traffic := v.TrafficWeight
	if traffic == 0 {
		traffic = DefaultTrafficWeight
	}
	base := math.Max(MinBaseWeight, traffic)
	if v.IsDefault {
		base *= a.Boost
	}

	mean := PriorMeanQuality
	if s.n > 0 {
		mean = s.sum / float64(s.n)
	}

	bonus := 0.0
	if s.n < total {
		bonus = math.Sqrt(2 * math.Log(float64(total)+1) / float64(s.n+1))
	}

	return base * (mean + bonus)
}
