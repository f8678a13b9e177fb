// Package stats provides the small set of order statistics the pipeline
// relies on: median, interpolated percentiles, and strict-rank quantile
// tiering. Tiering is deliberately rank-based so that tied input values
// still land in well-defined buckets.
package stats

import (
	"math"
	"sort"
)

// Median computes the median of a slice of float64 values.
// Returns 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percentile calculates the value at the given percentile (0..1) using
// linear interpolation between the two nearest ranks. The input does not
// need to be sorted. Returns 0 for an empty slice.
func Percentile(values []float64, percentile float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 1 {
		return sorted[n-1]
	}

	index := percentile * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// StrictRank assigns each value its 1-based ascending rank. Ties are
// broken by input position, so every value receives a distinct rank and
// the ranking is stable with respect to input order.
func StrictRank(values []float64) []int {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]int, n)
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// QuantileTiers buckets values into the given number of equal-count tiers
// using strict ranks, returning a tier per value. With ascending=true the
// smallest value lands in tier 1 and the largest in tier `tiers`; with
// ascending=false the ordering inverts (smallest value gets the top tier).
//
// Tier sizes never differ by more than one and are exactly n/t when the
// tier count divides n.
func QuantileTiers(values []float64, tiers int, ascending bool) []int {
	n := len(values)
	if n == 0 || tiers < 1 {
		return nil
	}

	ranks := StrictRank(values)
	result := make([]int, n)
	for i, r := range ranks {
		// ceil(r * tiers / n) maps ranks 1..n onto tiers 1..t with
		// equal-count buckets.
		tier := (r*tiers + n - 1) / n
		if tier < 1 {
			tier = 1
		}
		if tier > tiers {
			tier = tiers
		}
		if !ascending {
			tier = tiers + 1 - tier
		}
		result[i] = tier
	}
	return result
}
