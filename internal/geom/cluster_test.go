package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestCluster(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		tolerance float64
		want      []float64
	}{
		{"empty", nil, 1, []float64{}},
		{"single", []float64{4}, 1, []float64{4}},
		{"merges neighbours", []float64{100, 101, 0, 200}, 2, []float64{0, 100.5, 200}},
		{"chain within tolerance", []float64{10, 11, 12, 13}, 1, []float64{11.5}},
		{"all separate", []float64{30, 10, 20}, 5, []float64{10, 20, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cluster(tt.values, tt.tolerance))
		})
	}
}

func TestClusterIndices_StableWithinRun(t *testing.T) {
	groups := ClusterIndices([]float64{5, 5, 20, 5}, 0.5)
	assert.Equal(t, [][]int{{0, 1, 3}, {2}}, groups)
}

func TestBoundaries(t *testing.T) {
	// Duplicates merge, edges absorb positions that sit on them.
	got := Boundaries([]float64{0, 100, 101, 200}, 0, 200, 3)
	assert.Equal(t, []float64{0, 100.5, 200}, got)

	got = Boundaries(nil, 10, 20, 1)
	assert.Equal(t, []float64{10, 20}, got)

	got = Boundaries([]float64{-50, 50, 500}, 0, 100, 1)
	assert.Equal(t, []float64{0, 50, 100}, got)
}

func TestInterval(t *testing.T) {
	bounds := []float64{0, 50, 100}

	assert.Equal(t, 0, Interval(25, bounds))
	assert.Equal(t, 1, Interval(75, bounds))
	assert.Equal(t, 1, Interval(50, bounds))
	assert.Equal(t, 0, Interval(-10, bounds), "clamped to first interval")
	assert.Equal(t, 1, Interval(400, bounds), "clamped to last interval")
	assert.Equal(t, -1, Interval(1, []float64{0}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-5, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
