package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/grid"
)

func tok(text string, x0, y0, x1, y1 float64) domain.Token {
	return domain.Token{Text: text, BBox: domain.NewBBox(x0, y0, x1, y1), Confidence: 1}
}

func hLine(y, start, end float64) domain.LineSegment {
	return domain.LineSegment{Orientation: domain.Horizontal, Position: y, Start: start, End: end}
}

func vLine(x, start, end float64) domain.LineSegment {
	return domain.LineSegment{Orientation: domain.Vertical, Position: x, Start: start, End: end}
}

func tableRegion() domain.Region {
	return domain.Region{
		ID:    "cargo",
		Kind:  domain.RegionTable,
		BBox:  domain.BBox{X0: 0, Y0: 0, X1: 200, Y1: 100},
		Grid:  &domain.TableGridSpec{},
		Order: 1,
	}
}

func palletTokens() []domain.Token {
	return []domain.Token{
		tok("KG", 150, 60, 170, 80),
		tok("PALLETS", 10, 10, 60, 30),
		tok("WEIGHT", 110, 10, 170, 30),
		tok("10", 10, 60, 30, 80),
		tok("500", 110, 60, 140, 80),
	}
}

func TestResolve_LineGrid(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	lines := []domain.LineSegment{
		vLine(0, 0, 100), vLine(100, 0, 100), vLine(101, 0, 100), vLine(200, 0, 100),
		hLine(50, 0, 200), hLine(100, 0, 200),
	}

	res := r.Resolve(tableRegion(), palletTokens(), lines)

	require.NotNil(t, res.Table)
	assert.False(t, res.Degraded)
	assert.Equal(t, domain.GridSourceLines, res.Source)
	assert.Equal(t, [][]string{
		{"PALLETS", "WEIGHT"},
		{"10", "500 KG"},
	}, res.Table.Rows)
	assert.Equal(t, []float64{0, 50, 100}, res.RowBounds)
}

func TestResolve_CellOrderFollowsReadingBand(t *testing.T) {
	lines := []domain.LineSegment{
		vLine(0, 0, 100), vLine(100, 0, 100), vLine(200, 0, 100),
		hLine(0, 0, 200), hLine(50, 0, 200), hLine(100, 0, 200),
	}
	// Centres 12 apart with token height 20.
	tokens := []domain.Token{
		tok("KG", 150, 60, 170, 80),
		tok("500", 110, 72, 140, 92),
	}

	narrow := grid.NewResolver(grid.DefaultOptions())
	res := narrow.Resolve(tableRegion(), tokens, lines)
	require.NotNil(t, res.Table)
	assert.Equal(t, "KG 500", res.Table.Rows[1][1])

	opts := grid.DefaultOptions()
	opts.ReadingBand = 1.0
	wide := grid.NewResolver(opts)
	res = wide.Resolve(tableRegion(), tokens, lines)
	require.NotNil(t, res.Table)
	assert.Equal(t, "500 KG", res.Table.Rows[1][1])
}

func TestResolve_ShortLinesIgnored(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	lines := []domain.LineSegment{
		vLine(100, 0, 100), vLine(150, 0, 100),
		// Spans only a quarter of the region width.
		hLine(50, 0, 50), hLine(70, 0, 50),
	}

	res := r.Resolve(tableRegion(), palletTokens(), lines)
	assert.NotEqual(t, domain.GridSourceLines, res.Source)
}

func TestResolve_SingleRowLineDegrades(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	lines := []domain.LineSegment{
		vLine(100, 0, 100), vLine(150, 0, 100),
		hLine(50, 0, 200),
	}
	tokens := []domain.Token{
		tok("PALLETS", 10, 10, 60, 30),
		tok("WEIGHT", 110, 10, 170, 30),
	}

	res := r.Resolve(tableRegion(), tokens, lines)

	assert.True(t, res.Degraded)
	assert.Nil(t, res.Table)
	assert.Equal(t, "PALLETS WEIGHT", res.Text)
}

func TestResolve_TemplateBoundaries(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	region := tableRegion()
	region.Grid = &domain.TableGridSpec{
		RowBoundaries:    []float64{100, 0, 50},
		ColumnBoundaries: []float64{0, 100, 200},
	}

	res := r.Resolve(region, palletTokens(), nil)

	assert.Equal(t, domain.GridSourceTemplate, res.Source)
	assert.False(t, res.Degraded)
	assert.Equal(t, "500 KG", res.Table.Rows[1][1])
	assert.Equal(t, []float64{0, 50, 100}, res.RowBounds)
}

func TestResolve_AlignmentFallback(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())

	res := r.Resolve(tableRegion(), palletTokens(), nil)

	require.NotNil(t, res.Table)
	assert.True(t, res.Degraded)
	assert.Equal(t, domain.GridSourceAlignment, res.Source)
	assert.Equal(t, [][]string{
		{"PALLETS", "WEIGHT"},
		{"10", "500 KG"},
	}, res.Table.Rows)
}

func TestResolve_EmptyRegion(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())

	res := r.Resolve(tableRegion(), nil, nil)
	require.NotNil(t, res.Table)
	assert.False(t, res.Degraded)
	assert.Equal(t, 0, res.Table.RowCount())

	lines := []domain.LineSegment{
		vLine(100, 0, 100), vLine(150, 0, 100),
		hLine(30, 0, 200), hLine(60, 0, 200),
	}
	res = r.Resolve(tableRegion(), nil, lines)
	require.NotNil(t, res.Table)
	assert.False(t, res.Degraded)
	assert.Equal(t, 3, res.Table.RowCount())
	assert.Equal(t, 3, res.Table.ColCount())
	for _, row := range res.Table.Rows {
		for _, cell := range row {
			assert.Empty(t, cell)
		}
	}
}

func TestResolve_TokensOutsideGridClampToNearestCell(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	region := tableRegion()
	region.Grid = &domain.TableGridSpec{
		RowBoundaries:    []float64{0, 50, 100},
		ColumnBoundaries: []float64{0, 100, 200},
	}
	tokens := []domain.Token{tok("stray", 205, 104, 215, 112)}

	res := r.Resolve(region, tokens, nil)
	assert.Equal(t, "stray", res.Table.Rows[1][1])
}

func TestResolve_RectangularInvariant(t *testing.T) {
	r := grid.NewResolver(grid.DefaultOptions())
	tokens := []domain.Token{
		tok("A", 10, 10, 20, 20),
		tok("B", 60, 10, 70, 20),
		tok("C", 120, 10, 130, 20),
		tok("D", 10, 40, 20, 50),
		tok("E", 120, 70, 130, 80),
	}

	res := r.Resolve(tableRegion(), tokens, nil)
	require.NotNil(t, res.Table)
	cols := res.Table.ColCount()
	for _, row := range res.Table.Rows {
		assert.Len(t, row, cols)
	}
	assert.Equal(t, 3, res.Table.RowCount())
}
