// Package extractor pulls the content of every template region out of a
// normalized page layout.
package extractor

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"bolx/internal/domain"
	"bolx/internal/geom"
	"bolx/internal/grid"
	"bolx/internal/textproc"
)

// Options controls an Extractor.
type Options struct {
	// RegionMargin expands region boxes when testing token containment.
	RegionMargin float64
	// LineBand is the fraction of the median token height within which
	// tokens share a text line.
	LineBand float64
	// IndentTolerance is how far a line may start right of the block's left
	// edge before it opens a new paragraph.
	IndentTolerance float64
	// ParagraphGapFactor times the median line spacing is the largest gap
	// inside one paragraph.
	ParagraphGapFactor float64
	// UnboxedGap is the vertical gap that separates unboxed text blocks.
	UnboxedGap float64
	// Concurrency bounds the regions of one page extracted in parallel.
	Concurrency int
}

// DefaultOptions returns the stock extractor settings.
func DefaultOptions() Options {
	return Options{
		RegionMargin:       2,
		LineBand:           0.5,
		IndentTolerance:    10,
		ParagraphGapFactor: 1.5,
		UnboxedGap:         20,
		Concurrency:        runtime.NumCPU(),
	}
}

// Extractor runs the per-region strategies for one page at a time.
type Extractor struct {
	opts     Options
	resolver *grid.Resolver
	proc     *textproc.Processor
}

// New creates an Extractor backed by the given grid resolver and text
// post-processor.
func New(opts Options, resolver *grid.Resolver, proc *textproc.Processor) *Extractor {
	def := DefaultOptions()
	if opts.RegionMargin < 0 {
		opts.RegionMargin = def.RegionMargin
	}
	if opts.LineBand <= 0 {
		opts.LineBand = def.LineBand
	}
	if opts.IndentTolerance <= 0 {
		opts.IndentTolerance = def.IndentTolerance
	}
	if opts.ParagraphGapFactor <= 0 {
		opts.ParagraphGapFactor = def.ParagraphGapFactor
	}
	if opts.UnboxedGap <= 0 {
		opts.UnboxedGap = def.UnboxedGap
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	return &Extractor{opts: opts, resolver: resolver, proc: proc}
}

// ExtractPage extracts every region of page from lay. Region results follow
// the template order (Order, then declaration). Unassigned tokens are
// returned as unboxed blocks when includeUnboxed is set.
func (e *Extractor) ExtractPage(ctx context.Context, lay domain.Layout, page domain.TemplatePage, includeUnboxed bool) (domain.PageResult, error) {
	tokens := e.proc.CorrectTokens(lay.Tokens)
	asg := Assign(tokens, page.Regions, e.opts.RegionMargin)

	results := make([]domain.RegionResult, len(page.Regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i := range page.Regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.ExtractRegion(page.Regions[i], pick(tokens, asg.ByRegion[i]), lay.Lines)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.PageResult{}, err
	}

	order := make([]int, len(page.Regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return page.Regions[order[a]].Order < page.Regions[order[b]].Order
	})
	sorted := make([]domain.RegionResult, len(order))
	for i, k := range order {
		sorted[i] = results[k]
	}

	out := domain.PageResult{
		DocPage:      lay.PageIndex,
		TemplatePage: page.Index,
		Regions:      sorted,
	}
	if includeUnboxed {
		out.Unboxed = e.unboxed(pick(tokens, asg.Unassigned))
	}
	return out, nil
}

// ExtractRegion applies the region's strategy to the tokens assigned to it.
func (e *Extractor) ExtractRegion(region domain.Region, tokens []domain.Token, lines []domain.LineSegment) (domain.RegionResult, error) {
	res := domain.RegionResult{
		RegionID: region.ID,
		Label:    region.DisplayName(),
		Kind:     region.Kind,
	}

	var err error
	switch region.Kind {
	case domain.RegionGeneral:
		res.Text, err = e.proc.Process(e.GeneralText(tokens), region.Cleanup)
	case domain.RegionParagraph:
		res.Text, err = e.proc.Process(e.ParagraphText(tokens), region.Cleanup)
	case domain.RegionTable:
		gr := e.resolver.Resolve(region, tokens, lines)
		res.Degraded = gr.Degraded
		res.GridSource = gr.Source
		if gr.Table == nil {
			res.Text, err = e.proc.Process(gr.Text, region.Cleanup)
			break
		}
		res.Table = gr.Table
		err = e.processCells(gr.Table, region.Cleanup)
	default:
		return res, fmt.Errorf("region %q: unknown region type %q", region.ID, region.Kind)
	}
	if err != nil {
		return res, fmt.Errorf("region %q: %w", region.ID, err)
	}
	return res, nil
}

func (e *Extractor) processCells(t *domain.Table, rules []domain.CleanupRule) error {
	for i := range t.Rows {
		for j := range t.Rows[i] {
			cell, err := e.proc.Process(t.Rows[i][j], rules)
			if err != nil {
				return err
			}
			t.Rows[i][j] = cell
		}
	}
	return nil
}

// GeneralText joins tokens in reading order with single spaces.
func (e *Extractor) GeneralText(tokens []domain.Token) string {
	var parts []string
	for _, l := range e.textLines(tokens) {
		parts = append(parts, l.text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// ParagraphText reflows tokens into paragraphs. Lines of one paragraph are
// joined with a space, paragraphs with a newline. A line starts a new
// paragraph when it is indented past the block's left edge or when the gap
// to the previous line is unusually large.
func (e *Extractor) ParagraphText(tokens []domain.Token) string {
	lines := e.textLines(tokens)
	if len(lines) == 0 {
		return ""
	}

	left := lines[0].bbox.X0
	for _, l := range lines[1:] {
		if l.bbox.X0 < left {
			left = l.bbox.X0
		}
	}
	gaps := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].center-lines[i-1].center)
	}
	maxGap := e.opts.ParagraphGapFactor * geom.Median(gaps)

	var paragraphs []string
	current := []string{lines[0].text}
	for i := 1; i < len(lines); i++ {
		indented := lines[i].bbox.X0-left > e.opts.IndentTolerance
		spaced := maxGap > 0 && gaps[i-1] > maxGap
		if indented || spaced {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
		current = append(current, lines[i].text)
	}
	paragraphs = append(paragraphs, strings.Join(current, " "))
	return strings.Join(paragraphs, "\n")
}

type textLine struct {
	text   string
	bbox   domain.BBox
	center float64
}

// textLines groups tokens into visual lines ordered top to bottom.
func (e *Extractor) textLines(tokens []domain.Token) []textLine {
	if len(tokens) == 0 {
		return nil
	}
	heights := make([]float64, len(tokens))
	centers := make([]float64, len(tokens))
	for i, t := range tokens {
		heights[i] = t.BBox.Height()
		centers[i] = t.BBox.Center().Y
	}
	groups := geom.ClusterIndices(centers, e.opts.LineBand*geom.Median(heights))

	lines := make([]textLine, 0, len(groups))
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool { return tokens[idx[a]].BBox.X0 < tokens[idx[b]].BBox.X0 })
		words := make([]string, len(idx))
		box := tokens[idx[0]].BBox
		sum := 0.0
		for i, k := range idx {
			words[i] = tokens[k].Text
			box = box.Union(tokens[k].BBox)
			sum += centers[k]
		}
		lines = append(lines, textLine{
			text:   strings.Join(words, " "),
			bbox:   box,
			center: sum / float64(len(idx)),
		})
	}
	return lines
}

// unboxed groups tokens outside every region into blocks separated by
// vertical gaps wider than UnboxedGap.
func (e *Extractor) unboxed(tokens []domain.Token) []domain.TextBlock {
	lines := e.textLines(tokens)
	if len(lines) == 0 {
		return nil
	}

	var blocks []domain.TextBlock
	cur := []string{lines[0].text}
	box := lines[0].bbox
	flush := func() {
		text := e.proc.Normalize(strings.Join(cur, "\n"))
		if text != "" {
			blocks = append(blocks, domain.TextBlock{Text: text, BBox: box})
		}
	}
	for _, l := range lines[1:] {
		if l.bbox.Y0-box.Y1 > e.opts.UnboxedGap {
			flush()
			cur = nil
			box = l.bbox
		} else {
			box = box.Union(l.bbox)
		}
		cur = append(cur, l.text)
	}
	flush()
	return blocks
}
