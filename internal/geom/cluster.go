// Package geom holds pure numeric helpers shared by the layout, grid and
// matcher packages: medians, 1-D clustering and interval lookup.
package geom

import (
	"math"
	"sort"
)

// Median returns the median of values, or 0 for an empty slice. The input is
// not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Cluster groups sorted copies of values into runs where consecutive values
// differ by at most tolerance and returns the mean of each run in ascending
// order.
func Cluster(values []float64, tolerance float64) []float64 {
	groups := ClusterIndices(values, tolerance)
	centers := make([]float64, len(groups))
	for i, g := range groups {
		sum := 0.0
		for _, idx := range g {
			sum += values[idx]
		}
		centers[i] = sum / float64(len(g))
	}
	return centers
}

// ClusterIndices is Cluster returning the input indices of each run instead of
// its centre. Runs are ordered by value; indices inside a run are ordered by
// value, then by index.
func ClusterIndices(values []float64, tolerance float64) [][]int {
	if len(values) == 0 {
		return nil
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	var groups [][]int
	current := []int{order[0]}
	for _, idx := range order[1:] {
		prev := values[current[len(current)-1]]
		if values[idx]-prev > tolerance {
			groups = append(groups, current)
			current = []int{idx}
			continue
		}
		current = append(current, idx)
	}
	return append(groups, current)
}

// Boundaries builds a sorted boundary list spanning [lo, hi] from interior
// positions. Positions are clustered within tolerance, positions outside the
// span or within tolerance of an edge are absorbed by that edge.
func Boundaries(positions []float64, lo, hi, tolerance float64) []float64 {
	out := []float64{lo}
	for _, p := range Cluster(positions, tolerance) {
		if p-lo <= tolerance || hi-p <= tolerance {
			continue
		}
		out = append(out, p)
	}
	return append(out, hi)
}

// Interval returns the index i such that v lies in [bounds[i], bounds[i+1]].
// Values outside the span are clamped to the first or last interval. bounds
// must be sorted and hold at least two entries; otherwise -1 is returned.
func Interval(v float64, bounds []float64) int {
	n := len(bounds) - 1
	if n < 1 {
		return -1
	}
	if v <= bounds[0] {
		return 0
	}
	if v >= bounds[n] {
		return n - 1
	}
	i := sort.SearchFloat64s(bounds, v)
	// SearchFloat64s returns the first bound >= v.
	if i > 0 && bounds[i] > v {
		i--
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
