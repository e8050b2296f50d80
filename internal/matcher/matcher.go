// Package matcher selects the template that best explains a document's
// layout and decides which template page each document page follows.
package matcher

import (
	"math"
	"sort"

	"bolx/internal/domain"
)

// Options controls a Matcher.
type Options struct {
	WeightCoverage    float64
	WeightDensity     float64
	WeightGeometry    float64
	WeightFingerprint float64

	// RegionMargin expands regions for coverage and density counts.
	RegionMargin float64
	// MaxShift is the largest translation accepted between template and
	// document, and the search window around each anchor.
	MaxShift float64
	// MaxScale is the tolerated relative scale change, applied as extra
	// residual allowance proportional to an anchor's distance from the
	// anchor centroid.
	MaxScale float64
	// MatchThreshold is the minimum confidence for a match.
	MatchThreshold float64
	// TieEpsilon is the confidence difference below which candidates tie.
	TieEpsilon float64
}

// DefaultOptions returns the stock matcher settings.
func DefaultOptions() Options {
	return Options{
		WeightCoverage:    0.4,
		WeightDensity:     0.3,
		WeightGeometry:    0.3,
		WeightFingerprint: 0,
		RegionMargin:      2,
		MaxShift:          50,
		MaxScale:          0.05,
		MatchThreshold:    0.6,
		TieEpsilon:        1e-9,
	}
}

// Matcher scores documents against templates. It is safe for concurrent use.
type Matcher struct {
	opts Options
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	if opts.TieEpsilon <= 0 {
		opts.TieEpsilon = DefaultOptions().TieEpsilon
	}
	return &Matcher{opts: opts}
}

// Threshold returns the configured match threshold.
func (m *Matcher) Threshold() float64 { return m.opts.MatchThreshold }

// Candidate is the evaluation of one template against a document.
type Candidate struct {
	Template    *domain.Template
	PageMapping []int
	PageScores  []PageScore
	Confidence  float64
}

// Result converts the candidate into a MatchResult.
func (c Candidate) Result() *domain.MatchResult {
	scores := make([]float64, len(c.PageScores))
	for i, s := range c.PageScores {
		scores[i] = s.Total
	}
	return &domain.MatchResult{
		TemplateID:      c.Template.ID,
		TemplateName:    c.Template.Name,
		TemplateVersion: c.Template.Version,
		PageMapping:     append([]int(nil), c.PageMapping...),
		PageScores:      scores,
		Confidence:      c.Confidence,
	}
}

// Match returns the best template for the document. An empty candidate list
// yields domain.ErrNoTemplates; a best confidence under the threshold yields a
// *domain.NoTemplateMatchError.
func (m *Matcher) Match(layouts []domain.Layout, templates []domain.Template) (*domain.MatchResult, error) {
	best, err := m.Select(layouts, templates)
	if err != nil {
		return nil, err
	}
	return best.Result(), nil
}

// Select is Match returning the winning candidate, whose Template points into
// templates.
func (m *Matcher) Select(layouts []domain.Layout, templates []domain.Template) (Candidate, error) {
	if len(templates) == 0 {
		return Candidate{}, domain.ErrNoTemplates
	}
	ranked := m.Rank(layouts, templates)
	if len(ranked) == 0 {
		return Candidate{}, &domain.NoTemplateMatchError{Threshold: m.opts.MatchThreshold}
	}
	best := ranked[0]
	if best.Confidence < m.opts.MatchThreshold {
		return Candidate{}, &domain.NoTemplateMatchError{
			BestTemplate:   best.Template.ID,
			BestConfidence: best.Confidence,
			Threshold:      m.opts.MatchThreshold,
		}
	}
	return best, nil
}

// Rank evaluates every template with at least one page and returns the
// candidates best first. Ordering is fully deterministic: confidence, then
// most recent UpdatedAt, higher Version, and finally lexicographic ID.
func (m *Matcher) Rank(layouts []domain.Layout, templates []domain.Template) []Candidate {
	docText := ""
	if m.opts.WeightFingerprint > 0 {
		docText = documentText(layouts)
	}

	out := make([]Candidate, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		if len(t.Pages) == 0 {
			continue
		}
		fp := -1.0
		if m.opts.WeightFingerprint > 0 && t.RawText != "" {
			fp = Fingerprint(t.RawText, docText)
		}
		out = append(out, m.evaluate(layouts, t, fp))
	}

	sort.SliceStable(out, func(i, j int) bool { return m.better(out[i], out[j]) })
	return out
}

func (m *Matcher) better(a, b Candidate) bool {
	if math.Abs(a.Confidence-b.Confidence) > m.opts.TieEpsilon {
		return a.Confidence > b.Confidence
	}
	ta, tb := a.Template, b.Template
	if !ta.UpdatedAt.Equal(tb.UpdatedAt) {
		return ta.UpdatedAt.After(tb.UpdatedAt)
	}
	if ta.Version != tb.Version {
		return ta.Version > tb.Version
	}
	return ta.ID < tb.ID
}

// evaluate scores every (document page, template page) pair and picks the
// monotonic page mapping with the highest total score.
func (m *Matcher) evaluate(layouts []domain.Layout, t *domain.Template, fingerprint float64) Candidate {
	n, k := len(layouts), len(t.Pages)
	scores := make([][]PageScore, n)
	for i := range layouts {
		scores[i] = make([]PageScore, k)
		for j := range t.Pages {
			scores[i][j] = m.ScorePage(layouts[i], t.Pages[j], fingerprint)
		}
	}

	mapping := BestMapping(n, k, func(i, j int) float64 { return scores[i][j].Total })
	c := Candidate{Template: t, PageMapping: make([]int, n), PageScores: make([]PageScore, n)}
	sum := 0.0
	for i, j := range mapping {
		c.PageMapping[i] = t.Pages[j].Index
		c.PageScores[i] = scores[i][j]
		sum += scores[i][j].Total
	}
	if n > 0 {
		c.Confidence = sum / float64(n)
	}
	return c
}

// BestMapping assigns each of n document pages a template page index in
// [0, k) so that the mapping never decreases and the summed score is
// maximal. Ties prefer earlier template pages.
func BestMapping(n, k int, score func(i, j int) float64) []int {
	if n == 0 || k == 0 {
		return []int{}
	}
	best := make([][]float64, n)
	from := make([][]int, n)
	for i := range best {
		best[i] = make([]float64, k)
		from[i] = make([]int, k)
	}
	for j := 0; j < k; j++ {
		best[0][j] = score(0, j)
	}
	for i := 1; i < n; i++ {
		// prefix argmax over best[i-1][0..j], earliest on ties
		arg := 0
		for j := 0; j < k; j++ {
			if best[i-1][j] > best[i-1][arg] {
				arg = j
			}
			best[i][j] = best[i-1][arg] + score(i, j)
			from[i][j] = arg
		}
	}

	last := 0
	for j := 1; j < k; j++ {
		if best[n-1][j] > best[n-1][last] {
			last = j
		}
	}
	mapping := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		mapping[i] = last
		last = from[i][last]
	}
	return mapping
}
