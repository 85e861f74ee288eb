// Package eval implements the statistical evaluator (spec.md section 4.D):
// given a sketch snapshot and a ground-truth snapshot, it computes error
// scalars, percentiles, and top-N over/under-estimation lists.
package eval

import (
	"math"
	"sort"

	"github.com/dgraph-io/freqsketch/sketch"
	"github.com/pkg/errors"
)

// ErrEmptyTruth is returned by Evaluate when the truth snapshot has zero
// items -- spec.md section 4.D step 1's "no items processed" sentinel.
// This is not fatal: the driver simply emits no record for that tick, per
// spec.md section 7's propagation policy.
var ErrEmptyTruth = errors.New("eval: truth snapshot has no items")

// ErrorPair is one (item, error) entry in a top-N list.
type ErrorPair struct {
	Item  string `json:"item"`
	Error int64  `json:"error"`
}

// Record is one evaluation snapshot's worth of results, matching spec.md
// section 3's "Evaluation record" schema.
type Record struct {
	ProcessedItems int64 `json:"processed_items"`

	AvgError                  float64 `json:"avg_error"`
	AvgErrorPercentage        float64 `json:"avg_error_percentage"`
	MaxErrorPercentage        float64 `json:"max_error_percentage"`
	ExactMatchPercentage      float64 `json:"exact_match_percentage"`
	OverestimationPercentage  float64 `json:"overestimation_percentage"`
	UnderestimationPercentage float64 `json:"underestimation_percentage"`

	AvgQueryTimeNanos float64 `json:"avg_query_time"`
	MemoryUsageBytes  int64   `json:"memory_usage"`
	LoadFactor        float64 `json:"load_factor"`

	OverestimationPercentiles  map[string]float64 `json:"overestimation"`
	UnderestimationPercentiles map[string]float64 `json:"underestimation"`
	CombinedPercentiles        map[string]float64 `json:"combined"`

	TopOverestimations  []ErrorPair `json:"top_20_overestimations,omitempty"`
	TopUnderestimations []ErrorPair `json:"top_20_underestimations,omitempty"`
}

const topN = 20

// percentileKeys are the four spec.md section 3 requires in every
// percentile map. p99 is added on top when the sample is large enough to
// resolve it meaningfully (see SPEC_FULL.md's supplemented-features note);
// it is never required and its absence changes nothing spec.md depends on.
var percentileKeys = []float64{50, 90, 95, 100}

// Evaluate computes a Record comparing sketchSnapshot's estimates against
// truthSnapshot's exact counts, per spec.md section 4.D's algorithm.
// truthSnapshot must map item -> true count > 0; items with a non-positive
// true count are not meaningful ground truth and are skipped.
func Evaluate(sketchSnapshot sketch.Sketch, truthSnapshot map[string]int64) (*Record, error) {
	if len(truthSnapshot) == 0 {
		return nil, ErrEmptyTruth
	}

	type errEntry struct {
		item string
		err  int64
	}
	entries := make([]errEntry, 0, len(truthSnapshot))
	for item, trueCount := range truthSnapshot {
		if trueCount <= 0 {
			continue
		}
		e := sketchSnapshot.Query(item) - trueCount
		entries = append(entries, errEntry{item: item, err: e})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyTruth
	}

	var (
		sumAbsErr        float64
		sumAbsErrPct     float64
		maxErrPct        float64
		exactCount       int
		overCount        int
		underCount       int
		overErrs         []float64
		underErrs        []float64
		combinedAbsErrs  []float64
		overPairs        []ErrorPair
		underPairs       []ErrorPair
	)

	for _, e := range entries {
		trueCount := truthSnapshot[e.item]
		absErr := math.Abs(float64(e.err))
		sumAbsErr += absErr
		pct := 100 * absErr / float64(trueCount)
		sumAbsErrPct += pct
		if pct > maxErrPct {
			maxErrPct = pct
		}

		switch {
		case e.err == 0:
			exactCount++
		case e.err > 0:
			overCount++
			overErrs = append(overErrs, float64(e.err))
			combinedAbsErrs = append(combinedAbsErrs, absErr)
			overPairs = append(overPairs, ErrorPair{Item: e.item, Error: e.err})
		default:
			underCount++
			underErrs = append(underErrs, -float64(e.err))
			combinedAbsErrs = append(combinedAbsErrs, absErr)
			underPairs = append(underPairs, ErrorPair{Item: e.item, Error: e.err})
		}
	}

	n := float64(len(entries))
	rec := &Record{
		AvgError:                  sumAbsErr / n,
		AvgErrorPercentage:        sumAbsErrPct / n,
		MaxErrorPercentage:        maxErrPct,
		ExactMatchPercentage:      100 * float64(exactCount) / n,
		OverestimationPercentage:  100 * float64(overCount) / n,
		UnderestimationPercentage: 100 * float64(underCount) / n,
		LoadFactor:                sketchSnapshot.LoadFactor(),
		MemoryUsageBytes:          sketchSnapshot.MemoryBytes(),
		OverestimationPercentiles:  percentileMap(overErrs),
		UnderestimationPercentiles: percentileMap(underErrs),
		CombinedPercentiles:        percentileMap(combinedAbsErrs),
	}

	sort.Slice(overPairs, func(i, j int) bool { return overPairs[i].Error > overPairs[j].Error })
	sort.Slice(underPairs, func(i, j int) bool { return underPairs[i].Error < underPairs[j].Error })
	rec.TopOverestimations = truncate(overPairs, topN)
	rec.TopUnderestimations = truncate(underPairs, topN)

	return rec, nil
}

func truncate(pairs []ErrorPair, n int) []ErrorPair {
	if len(pairs) <= n {
		return pairs
	}
	return pairs[:n]
}

// percentileMap computes the four required percentiles (plus p99 when the
// sample supports it) over values using linear interpolation -- the
// standard "inclusive" quantile definition spec.md section 4.D step 4
// calls for. An empty values slice yields an empty map, per spec.md's
// "Empty categories yield an empty percentile map."
func percentileMap(values []float64) map[string]float64 {
	out := make(map[string]float64, 5)
	if len(values) == 0 {
		return out
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	for _, p := range percentileKeys {
		out[percentileLabel(p)] = percentile(sorted, p)
	}
	if len(sorted) >= 100 {
		out["99th"] = percentile(sorted, 99)
	}
	return out
}

func percentileLabel(p float64) string {
	switch p {
	case 50:
		return "50th"
	case 90:
		return "90th"
	case 95:
		return "95th"
	case 100:
		return "100th"
	default:
		return "pth"
	}
}

// percentile computes the p-th percentile of a pre-sorted slice via linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
