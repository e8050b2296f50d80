// Package layout turns raw collaborator output into canonical per-page
// layouts: tokens in reading order and merged ruling lines.
package layout

import (
	"math"
	"sort"
	"strings"

	"bolx/internal/domain"
	"bolx/internal/geom"
)

// Options controls the Normalizer.
type Options struct {
	// ReadingBand is the fraction of the median token height within which
	// token centres are considered to sit on the same line.
	ReadingBand float64
	// LineMergeTolerance is the distance in layout units under which parallel
	// ruling lines are treated as one.
	LineMergeTolerance float64
}

// DefaultOptions returns the stock normalizer settings.
func DefaultOptions() Options {
	return Options{
		ReadingBand:        0.5,
		LineMergeTolerance: 3,
	}
}

// Normalizer converts RawPages into Layouts. It holds no state besides its
// options and is safe for concurrent use.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer, filling zero options with defaults.
func NewNormalizer(opts Options) *Normalizer {
	def := DefaultOptions()
	if opts.ReadingBand <= 0 {
		opts.ReadingBand = def.ReadingBand
	}
	if opts.LineMergeTolerance <= 0 {
		opts.LineMergeTolerance = def.LineMergeTolerance
	}
	return &Normalizer{opts: opts}
}

// Normalize builds the canonical layout of one page. A page without tokens
// yields an empty layout.
func (n *Normalizer) Normalize(page domain.RawPage) domain.Layout {
	tokens := make([]domain.Token, 0, len(page.Tokens))
	for _, rt := range page.Tokens {
		text := strings.TrimSpace(rt.Text)
		if text == "" {
			continue
		}
		conf := rt.Confidence
		if conf <= 0 || conf > 1 {
			conf = 1
		}
		tokens = append(tokens, domain.Token{
			Text:       text,
			BBox:       domain.NewBBox(rt.BBox[0], rt.BBox[1], rt.BBox[2], rt.BBox[3]),
			PageIndex:  page.Index,
			Confidence: conf,
		})
	}

	return domain.Layout{
		PageIndex: page.Index,
		Width:     page.Width,
		Height:    page.Height,
		Tokens:    ReadingOrder(tokens, n.opts.ReadingBand),
		Lines:     MergeLines(page.Lines, n.opts.LineMergeTolerance),
	}
}

// NormalizeDocument normalizes every page of a document in page order.
func (n *Normalizer) NormalizeDocument(doc domain.SourceDocument) []domain.Layout {
	pages := append([]domain.RawPage(nil), doc.Pages...)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	layouts := make([]domain.Layout, len(pages))
	for i := range pages {
		layouts[i] = n.Normalize(pages[i])
	}
	return layouts
}

// ReadingOrder returns tokens sorted top to bottom in bands, left to right
// inside a band. band is a fraction of the median token height. Ties keep
// input order.
func ReadingOrder(tokens []domain.Token, band float64) []domain.Token {
	if len(tokens) == 0 {
		return []domain.Token{}
	}
	heights := make([]float64, len(tokens))
	centers := make([]float64, len(tokens))
	for i := range tokens {
		heights[i] = tokens[i].BBox.Height()
		centers[i] = tokens[i].BBox.Center().Y
	}
	tolerance := band * geom.Median(heights)

	bands := geom.ClusterIndices(centers, tolerance)
	out := make([]domain.Token, 0, len(tokens))
	for _, idx := range bands {
		sort.SliceStable(idx, func(a, b int) bool {
			ta, tb := tokens[idx[a]], tokens[idx[b]]
			if ta.BBox.X0 != tb.BBox.X0 {
				return ta.BBox.X0 < tb.BBox.X0
			}
			return idx[a] < idx[b]
		})
		for _, i := range idx {
			out = append(out, tokens[i])
		}
	}
	return out
}

// MergeLines merges parallel segments whose positions differ by less than
// tolerance and whose extents overlap or touch within tolerance. The merged
// position is the length-weighted mean, the extent is the union. Output is
// ordered horizontal first, then by position and start.
func MergeLines(lines []domain.LineSegment, tolerance float64) []domain.LineSegment {
	if len(lines) == 0 {
		return []domain.LineSegment{}
	}
	var out []domain.LineSegment
	for _, o := range []domain.Orientation{domain.Horizontal, domain.Vertical} {
		var group []domain.LineSegment
		for _, l := range lines {
			if l.Orientation != o {
				continue
			}
			if l.End < l.Start {
				l.Start, l.End = l.End, l.Start
			}
			group = append(group, l)
		}
		out = append(out, mergeParallel(group, tolerance)...)
	}
	if out == nil {
		out = []domain.LineSegment{}
	}
	return out
}

type mergedLine struct {
	seg    domain.LineSegment
	weight float64
	sum    float64
}

func mergeParallel(lines []domain.LineSegment, tolerance float64) []domain.LineSegment {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Position != lines[j].Position {
			return lines[i].Position < lines[j].Position
		}
		return lines[i].Start < lines[j].Start
	})

	var merged []*mergedLine
	for _, l := range lines {
		w := math.Max(l.Length(), 1)
		var target *mergedLine
		for _, m := range merged {
			if math.Abs(m.seg.Position-l.Position) < tolerance &&
				l.Start <= m.seg.End+tolerance && l.End >= m.seg.Start-tolerance {
				target = m
				break
			}
		}
		if target == nil {
			merged = append(merged, &mergedLine{seg: l, weight: w, sum: l.Position * w})
			continue
		}
		target.weight += w
		target.sum += l.Position * w
		target.seg.Position = target.sum / target.weight
		target.seg.Start = math.Min(target.seg.Start, l.Start)
		target.seg.End = math.Max(target.seg.End, l.End)
	}

	out := make([]domain.LineSegment, len(merged))
	for i, m := range merged {
		out[i] = m.seg
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Start < out[j].Start
	})
	return out
}
