// Package grid resolves the row and column structure of table regions and
// places tokens into cells.
//
// Boundaries come from the first source that yields at least a 2x2 grid:
// ruling lines found in the layout, boundaries declared by the template, and
// finally clustering of token positions. Falling back to token alignment marks
// the result as degraded.
package grid

import (
	"math"
	"sort"
	"strings"

	"bolx/internal/domain"
	"bolx/internal/geom"
	"bolx/internal/layout"
)

// Options controls a Resolver.
type Options struct {
	// Sensitivity is the default fraction of a region's extent a ruling line
	// may fall short of and still count as a grid line. Templates may
	// override it per region.
	Sensitivity float64
	// LineMergeTolerance merges near-duplicate boundaries.
	LineMergeTolerance float64
	// MinGridLines is the minimum number of consistent lines per axis.
	MinGridLines int
	// RowClusterFactor times the median token height groups tokens into rows.
	RowClusterFactor float64
	// ColumnClusterFactor times the median token width groups phrase left
	// edges into columns.
	ColumnClusterFactor float64
	// WordGapFactor times the median token height is the largest horizontal
	// gap between tokens of one phrase.
	WordGapFactor float64
	// ReadingBand orders the tokens of a cell, as in layout.ReadingOrder.
	ReadingBand float64
}

// DefaultOptions returns the stock resolver settings.
func DefaultOptions() Options {
	return Options{
		Sensitivity:         0.2,
		LineMergeTolerance:  3,
		MinGridLines:        2,
		RowClusterFactor:    0.5,
		ColumnClusterFactor: 1.0,
		WordGapFactor:       1.0,
		ReadingBand:         0.5,
	}
}

// Result is the resolved content of a table region. Table is nil when the
// region degraded to a single text block.
type Result struct {
	Table     *domain.Table
	Text      string
	Degraded  bool
	Source    domain.GridSource
	RowBounds []float64
	ColBounds []float64
}

// Resolver resolves table grids. It is stateless apart from its options.
type Resolver struct {
	opts Options
}

// NewResolver creates a Resolver, filling unset options with defaults.
func NewResolver(opts Options) *Resolver {
	def := DefaultOptions()
	if opts.Sensitivity <= 0 || opts.Sensitivity > 1 {
		opts.Sensitivity = def.Sensitivity
	}
	if opts.LineMergeTolerance <= 0 {
		opts.LineMergeTolerance = def.LineMergeTolerance
	}
	if opts.MinGridLines <= 0 {
		opts.MinGridLines = def.MinGridLines
	}
	if opts.RowClusterFactor <= 0 {
		opts.RowClusterFactor = def.RowClusterFactor
	}
	if opts.ColumnClusterFactor <= 0 {
		opts.ColumnClusterFactor = def.ColumnClusterFactor
	}
	if opts.WordGapFactor <= 0 {
		opts.WordGapFactor = def.WordGapFactor
	}
	if opts.ReadingBand <= 0 {
		opts.ReadingBand = def.ReadingBand
	}
	return &Resolver{opts: opts}
}

// Resolve builds the table of a region from the tokens assigned to it and the
// ruling lines of its page.
func (r *Resolver) Resolve(region domain.Region, tokens []domain.Token, lines []domain.LineSegment) Result {
	tokens = layout.ReadingOrder(tokens, r.opts.ReadingBand)

	if rows, cols, ok := r.lineGrid(region, lines); ok {
		return Result{
			Table:     fillCells(rows, cols, tokens),
			Source:    domain.GridSourceLines,
			RowBounds: rows,
			ColBounds: cols,
		}
	}

	if rows, cols, ok := declaredGrid(region.Grid); ok {
		return Result{
			Table:     fillCells(rows, cols, tokens),
			Source:    domain.GridSourceTemplate,
			RowBounds: rows,
			ColBounds: cols,
		}
	}

	if len(tokens) == 0 {
		return Result{Table: domain.NewTable(0, 0), Source: domain.GridSourceNone}
	}

	if table, ok := r.alignmentGrid(tokens); ok {
		return Result{Table: table, Degraded: true, Source: domain.GridSourceAlignment}
	}

	return Result{Text: r.textBlock(tokens), Degraded: true, Source: domain.GridSourceNone}
}

// lineGrid derives boundaries from ruling lines spanning enough of the region.
func (r *Resolver) lineGrid(region domain.Region, lines []domain.LineSegment) (rows, cols []float64, ok bool) {
	sensitivity := r.opts.Sensitivity
	if region.Grid != nil && region.Grid.Sensitivity > 0 && region.Grid.Sensitivity <= 1 {
		sensitivity = region.Grid.Sensitivity
	}
	minCover := 1 - sensitivity
	tol := r.opts.LineMergeTolerance
	box := region.BBox

	var hPos, vPos []float64
	for _, l := range lines {
		start, end := math.Min(l.Start, l.End), math.Max(l.Start, l.End)
		switch l.Orientation {
		case domain.Horizontal:
			if l.Position < box.Y0-tol || l.Position > box.Y1+tol || box.Width() <= 0 {
				continue
			}
			if coverage(start, end, box.X0, box.X1) >= minCover {
				hPos = append(hPos, l.Position)
			}
		case domain.Vertical:
			if l.Position < box.X0-tol || l.Position > box.X1+tol || box.Height() <= 0 {
				continue
			}
			if coverage(start, end, box.Y0, box.Y1) >= minCover {
				vPos = append(vPos, l.Position)
			}
		}
	}

	if len(geom.Cluster(hPos, tol)) < r.opts.MinGridLines || len(geom.Cluster(vPos, tol)) < r.opts.MinGridLines {
		return nil, nil, false
	}
	rows = geom.Boundaries(hPos, box.Y0, box.Y1, tol)
	cols = geom.Boundaries(vPos, box.X0, box.X1, tol)
	if len(rows) < 3 || len(cols) < 3 {
		return nil, nil, false
	}
	return rows, cols, true
}

// coverage returns the fraction of [lo, hi] covered by [start, end].
func coverage(start, end, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	overlap := math.Min(end, hi) - math.Max(start, lo)
	if overlap <= 0 {
		return 0
	}
	return overlap / span
}

func declaredGrid(spec *domain.TableGridSpec) (rows, cols []float64, ok bool) {
	if spec == nil || len(spec.RowBoundaries) < 3 || len(spec.ColumnBoundaries) < 3 {
		return nil, nil, false
	}
	rows = append([]float64(nil), spec.RowBoundaries...)
	cols = append([]float64(nil), spec.ColumnBoundaries...)
	sort.Float64s(rows)
	sort.Float64s(cols)
	return rows, cols, true
}

// fillCells places each token in the cell containing its centre, clamping
// tokens outside the grid to the nearest cell. tokens must be in reading
// order.
func fillCells(rows, cols []float64, tokens []domain.Token) *domain.Table {
	table := domain.NewTable(len(rows)-1, len(cols)-1)
	parts := make([][][]string, table.RowCount())
	for i := range parts {
		parts[i] = make([][]string, table.ColCount())
	}
	for _, t := range tokens {
		c := t.BBox.Center()
		ri := geom.Interval(c.Y, rows)
		ci := geom.Interval(c.X, cols)
		parts[ri][ci] = append(parts[ri][ci], t.Text)
	}
	for i := range parts {
		for j := range parts[i] {
			table.Rows[i][j] = strings.Join(parts[i][j], " ")
		}
	}
	return table
}

type phrase struct {
	text string
	bbox domain.BBox
}

// alignmentGrid infers rows from clustered token centres and columns from the
// left edges of phrases.
func (r *Resolver) alignmentGrid(tokens []domain.Token) (*domain.Table, bool) {
	heights := make([]float64, len(tokens))
	widths := make([]float64, len(tokens))
	centers := make([]float64, len(tokens))
	for i, t := range tokens {
		heights[i] = t.BBox.Height()
		widths[i] = t.BBox.Width()
		centers[i] = t.BBox.Center().Y
	}
	medH := geom.Median(heights)
	rowGroups := geom.ClusterIndices(centers, r.opts.RowClusterFactor*medH)
	if len(rowGroups) < 2 {
		return nil, false
	}

	rowPhrases := make([][]phrase, len(rowGroups))
	var lefts []float64
	for i, idx := range rowGroups {
		row := make([]domain.Token, len(idx))
		for j, k := range idx {
			row[j] = tokens[k]
		}
		rowPhrases[i] = r.phrases(row, r.opts.WordGapFactor*medH)
		for _, p := range rowPhrases[i] {
			lefts = append(lefts, p.bbox.X0)
		}
	}

	colCenters := geom.Cluster(lefts, r.opts.ColumnClusterFactor*geom.Median(widths))
	if len(colCenters) < 2 {
		return nil, false
	}

	table := domain.NewTable(len(rowGroups), len(colCenters))
	for i, ps := range rowPhrases {
		for _, p := range ps {
			j := nearest(p.bbox.X0, colCenters)
			if table.Rows[i][j] == "" {
				table.Rows[i][j] = p.text
			} else {
				table.Rows[i][j] += " " + p.text
			}
		}
	}
	return table, true
}

// phrases merges horizontally adjacent tokens of one row.
func (r *Resolver) phrases(row []domain.Token, maxGap float64) []phrase {
	sort.SliceStable(row, func(a, b int) bool { return row[a].BBox.X0 < row[b].BBox.X0 })
	var out []phrase
	for _, t := range row {
		if n := len(out); n > 0 && t.BBox.X0-out[n-1].bbox.X1 < maxGap {
			out[n-1].text += " " + t.Text
			out[n-1].bbox = out[n-1].bbox.Union(t.BBox)
			continue
		}
		out = append(out, phrase{text: t.Text, bbox: t.BBox})
	}
	return out
}

func nearest(v float64, centers []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		if d := math.Abs(v - c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// textBlock renders tokens as lines of text for regions without a usable grid.
func (r *Resolver) textBlock(tokens []domain.Token) string {
	heights := make([]float64, len(tokens))
	centers := make([]float64, len(tokens))
	for i, t := range tokens {
		heights[i] = t.BBox.Height()
		centers[i] = t.BBox.Center().Y
	}
	groups := geom.ClusterIndices(centers, r.opts.RowClusterFactor*geom.Median(heights))
	lines := make([]string, 0, len(groups))
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool { return tokens[idx[a]].BBox.X0 < tokens[idx[b]].BBox.X0 })
		words := make([]string, len(idx))
		for i, k := range idx {
			words[i] = tokens[k].Text
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}
