package matcher

import (
	"math"
	"strings"
	"unicode"

	"bolx/internal/domain"
)

// PageScore breaks down how well one document page fits one template page.
// Fingerprint is negative when it did not apply.
type PageScore struct {
	Coverage    float64 `json:"coverage"`
	Density     float64 `json:"density"`
	Geometry    float64 `json:"geometry"`
	Fingerprint float64 `json:"fingerprint"`
	Total       float64 `json:"total"`
}

// ScorePage compares a document page with a template page. fingerprint is the
// precomputed text similarity of the whole document, or a negative value when
// it does not apply. The result depends only on its inputs.
func (m *Matcher) ScorePage(lay domain.Layout, page domain.TemplatePage, fingerprint float64) PageScore {
	s := PageScore{
		Coverage:    m.coverage(lay.Tokens, page.Regions),
		Density:     m.density(lay.Tokens, page.Regions),
		Geometry:    m.geometry(lay.Tokens, page.Regions),
		Fingerprint: fingerprint,
	}

	sum := m.opts.WeightCoverage*s.Coverage + m.opts.WeightDensity*s.Density + m.opts.WeightGeometry*s.Geometry
	weights := m.opts.WeightCoverage + m.opts.WeightDensity + m.opts.WeightGeometry
	if fingerprint >= 0 && m.opts.WeightFingerprint > 0 {
		sum += m.opts.WeightFingerprint * fingerprint
		weights += m.opts.WeightFingerprint
	}
	if weights > 0 {
		s.Total = clamp01(sum / weights)
	}
	return s
}

// coverage is the fraction of tokens whose centre falls in some region.
func (m *Matcher) coverage(tokens []domain.Token, regions []domain.Region) float64 {
	if len(tokens) == 0 {
		return 0
	}
	covered := 0
	for _, t := range tokens {
		c := t.BBox.Center()
		for _, r := range regions {
			if r.BBox.Expand(m.opts.RegionMargin).Contains(c) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(tokens))
}

// density compares per-region token counts against the expected counts.
// Regions without an expectation score 1 when occupied.
func (m *Matcher) density(tokens []domain.Token, regions []domain.Region) float64 {
	if len(regions) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range regions {
		box := r.BBox.Expand(m.opts.RegionMargin)
		count := 0
		for _, t := range tokens {
			if box.Contains(t.BBox.Center()) {
				count++
			}
		}
		switch {
		case r.ExpectedTokens > 0:
			diff := math.Abs(float64(count - r.ExpectedTokens))
			total += 1 - math.Min(1, diff/float64(r.ExpectedTokens))
		case count > 0:
			total++
		}
	}
	return total / float64(len(regions))
}

// geometry locates anchor regions in the document and scores how
// consistently they moved. Flagged anchors are used when present, otherwise
// every region is an anchor.
func (m *Matcher) geometry(tokens []domain.Token, regions []domain.Region) float64 {
	var anchors []domain.Region
	for _, r := range regions {
		if r.Anchor {
			anchors = append(anchors, r)
		}
	}
	if len(anchors) == 0 {
		anchors = regions
	}
	if len(anchors) == 0 {
		return 0
	}

	type located struct {
		offset domain.Point
		found  bool
	}
	locs := make([]located, len(anchors))
	var tx, ty, ax, ay float64
	found := 0
	for i, a := range anchors {
		center := a.BBox.Center()
		ax += center.X
		ay += center.Y

		window := a.BBox.Expand(m.opts.MaxShift)
		var sx, sy float64
		n := 0
		for _, t := range tokens {
			c := t.BBox.Center()
			if window.Contains(c) {
				sx += c.X
				sy += c.Y
				n++
			}
		}
		if n == 0 {
			continue
		}
		off := domain.Point{X: sx/float64(n) - center.X, Y: sy/float64(n) - center.Y}
		locs[i] = located{offset: off, found: true}
		tx += off.X
		ty += off.Y
		found++
	}
	if found == 0 {
		return 0
	}

	shift := domain.Point{X: tx / float64(found), Y: ty / float64(found)}
	if math.Hypot(shift.X, shift.Y) > m.opts.MaxShift {
		return 0
	}
	centroid := domain.Point{X: ax / float64(len(anchors)), Y: ay / float64(len(anchors))}

	total := 0.0
	for i, a := range anchors {
		if !locs[i].found {
			continue
		}
		residual := locs[i].offset.Distance(shift)
		allowance := a.BBox.HalfDiagonal() + m.opts.MaxScale*a.BBox.Center().Distance(centroid)
		if allowance <= 0 {
			if residual == 0 {
				total++
			}
			continue
		}
		total += math.Max(0, 1-residual/allowance)
	}
	return total / float64(len(anchors))
}

// Fingerprint returns the Dice similarity of the word sets of a and b.
func Fingerprint(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(wa)+len(wb))
}

func wordSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func documentText(layouts []domain.Layout) string {
	var b strings.Builder
	for _, l := range layouts {
		for _, t := range l.Tokens {
			b.WriteString(t.Text)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
