package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/extractor"
	"bolx/internal/grid"
	"bolx/internal/textproc"
)

func newExtractor() *extractor.Extractor {
	return extractor.New(extractor.DefaultOptions(),
		grid.NewResolver(grid.DefaultOptions()),
		textproc.NewProcessor(textproc.DefaultOptions()))
}

func tok(text string, x0, y0, x1, y1 float64) domain.Token {
	return domain.Token{Text: text, BBox: domain.NewBBox(x0, y0, x1, y1), Confidence: 1}
}

func TestAssign_EachTokenOnce(t *testing.T) {
	regions := []domain.Region{
		{ID: "left", BBox: domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 100}, Order: 2},
		{ID: "right", BBox: domain.BBox{X0: 90, Y0: 0, X1: 200, Y1: 100}, Order: 1},
	}
	tokens := []domain.Token{
		tok("a", 10, 10, 20, 20),     // only left
		tok("b", 150, 10, 160, 20),   // only right
		tok("c", 92, 10, 98, 20),     // both; left centre is closer
		tok("d", 300, 300, 310, 310), // none
	}

	a := extractor.Assign(tokens, regions, 2)

	total := len(a.Unassigned)
	for _, idx := range a.ByRegion {
		total += len(idx)
	}
	assert.Equal(t, len(tokens), total)
	assert.Equal(t, []int{0, 2}, a.ByRegion[0])
	assert.Equal(t, []int{1}, a.ByRegion[1])
	assert.Equal(t, []int{3}, a.Unassigned)
}

func TestAssign_TieBreaksOnOrder(t *testing.T) {
	box := domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 100}
	regions := []domain.Region{
		{ID: "first", BBox: box, Order: 5},
		{ID: "second", BBox: box, Order: 1},
		{ID: "third", BBox: box, Order: 1},
	}
	tokens := []domain.Token{tok("x", 40, 40, 60, 60)}

	a := extractor.Assign(tokens, regions, 0)
	assert.Empty(t, a.ByRegion[0])
	assert.Equal(t, []int{0}, a.ByRegion[1])
	assert.Empty(t, a.ByRegion[2])
}

func TestAssign_MarginIncludesEdgeTokens(t *testing.T) {
	regions := []domain.Region{{ID: "r", BBox: domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 20}}}
	tokens := []domain.Token{tok("edge", 95, 18, 105, 24)}

	assert.Equal(t, []int{0}, extractor.Assign(tokens, regions, 2).ByRegion[0])
	assert.Equal(t, []int{0}, extractor.Assign(tokens, regions, 0).Unassigned)
}

func TestExtractPage_GeneralRegion(t *testing.T) {
	e := newExtractor()
	lay := domain.Layout{
		PageIndex: 0,
		Tokens: []domain.Token{
			tok("DATE", 10, 10, 50, 20),
			tok("August", 60, 10, 120, 20),
			tok("26,", 130, 10, 150, 20),
			tok("2025", 160, 10, 200, 20),
		},
	}
	page := domain.TemplatePage{
		Index: 0,
		Regions: []domain.Region{
			{ID: "date", Label: "Date", Kind: domain.RegionGeneral, BBox: domain.BBox{X0: 0, Y0: 0, X1: 210, Y1: 30}},
		},
	}

	res, err := e.ExtractPage(context.Background(), lay, page, false)
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, "DATE August 26, 2025", res.Regions[0].Text)
	assert.Equal(t, "Date", res.Regions[0].Label)
	assert.Empty(t, res.Unboxed)
}

func TestExtractPage_OrderAndEmptyRegions(t *testing.T) {
	e := newExtractor()
	lay := domain.Layout{Tokens: []domain.Token{tok("ACME", 10, 110, 60, 120)}}
	page := domain.TemplatePage{
		Regions: []domain.Region{
			{ID: "b", Kind: domain.RegionGeneral, BBox: domain.BBox{X0: 0, Y0: 100, X1: 100, Y1: 130}, Order: 2},
			{ID: "a", Kind: domain.RegionParagraph, BBox: domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 50}, Order: 1},
			{ID: "t", Kind: domain.RegionTable, BBox: domain.BBox{X0: 0, Y0: 200, X1: 100, Y1: 300}, Order: 3,
				Grid: &domain.TableGridSpec{}},
		},
	}

	res, err := e.ExtractPage(context.Background(), lay, page, false)
	require.NoError(t, err)
	require.Len(t, res.Regions, 3)
	assert.Equal(t, "a", res.Regions[0].RegionID)
	assert.Equal(t, "", res.Regions[0].Text)
	assert.Equal(t, "b", res.Regions[1].RegionID)
	assert.Equal(t, "ACME", res.Regions[1].Text)
	assert.Equal(t, "t", res.Regions[2].RegionID)
	require.NotNil(t, res.Regions[2].Table)
	assert.False(t, res.Regions[2].Degraded)
}

func TestExtractPage_Unboxed(t *testing.T) {
	e := newExtractor()
	lay := domain.Layout{Tokens: []domain.Token{
		tok("inside", 10, 10, 50, 20),
		tok("Footer", 10, 400, 50, 410),
		tok("note", 60, 400, 90, 410),
		tok("continued", 10, 412, 80, 422),
		tok("Far", 10, 600, 40, 610),
	}}
	page := domain.TemplatePage{Regions: []domain.Region{
		{ID: "r", Kind: domain.RegionGeneral, BBox: domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 30}},
	}}

	res, err := e.ExtractPage(context.Background(), lay, page, true)
	require.NoError(t, err)
	require.Len(t, res.Unboxed, 2)
	assert.Equal(t, "Footer note\ncontinued", res.Unboxed[0].Text)
	assert.Equal(t, "Far", res.Unboxed[1].Text)
}

func TestExtractPage_TableRegion(t *testing.T) {
	e := newExtractor()
	lay := domain.Layout{
		Tokens: []domain.Token{
			tok("PALLETS", 10, 10, 60, 30),
			tok("WEIGHT", 110, 10, 170, 30),
			tok("10", 10, 60, 30, 80),
			tok("500", 110, 60, 140, 80),
			tok("KG", 150, 60, 170, 80),
		},
		Lines: []domain.LineSegment{
			{Orientation: domain.Vertical, Position: 0, Start: 0, End: 100},
			{Orientation: domain.Vertical, Position: 100, Start: 0, End: 100},
			{Orientation: domain.Vertical, Position: 101, Start: 0, End: 100},
			{Orientation: domain.Vertical, Position: 200, Start: 0, End: 100},
			{Orientation: domain.Horizontal, Position: 50, Start: 0, End: 200},
			{Orientation: domain.Horizontal, Position: 100, Start: 0, End: 200},
		},
	}
	page := domain.TemplatePage{Regions: []domain.Region{{
		ID: "cargo", Kind: domain.RegionTable,
		BBox: domain.BBox{X0: 0, Y0: 0, X1: 200, Y1: 100},
		Grid: &domain.TableGridSpec{},
	}}}

	res, err := e.ExtractPage(context.Background(), lay, page, false)
	require.NoError(t, err)
	got := res.Regions[0]
	assert.Equal(t, domain.GridSourceLines, got.GridSource)
	assert.Equal(t, [][]string{{"PALLETS", "WEIGHT"}, {"10", "500 KG"}}, got.Table.Rows)
}

func TestExtractPage_LowConfidenceTokensCorrected(t *testing.T) {
	e := newExtractor()
	lay := domain.Layout{Tokens: []domain.Token{
		{Text: "B0OKING", BBox: domain.NewBBox(10, 10, 80, 20), Confidence: 0.3},
	}}
	page := domain.TemplatePage{Regions: []domain.Region{
		{ID: "r", Kind: domain.RegionGeneral, BBox: domain.BBox{X0: 0, Y0: 0, X1: 100, Y1: 30}},
	}}

	res, err := e.ExtractPage(context.Background(), lay, page, false)
	require.NoError(t, err)
	assert.Equal(t, "BOOKING", res.Regions[0].Text)
}

func TestExtractRegion_UnknownKind(t *testing.T) {
	e := newExtractor()
	_, err := e.ExtractRegion(domain.Region{ID: "x", Kind: "barcode"}, nil, nil)
	assert.Error(t, err)
}

func TestExtractRegion_CleanupRules(t *testing.T) {
	e := newExtractor()
	region := domain.Region{
		ID: "bl", Kind: domain.RegionGeneral,
		Cleanup: []domain.CleanupRule{{Pattern: `^B/L No\.?\s*`, Replace: ""}},
	}
	tokens := []domain.Token{tok("B/L", 0, 0, 20, 10), tok("No.", 25, 0, 40, 10), tok("HLCU123", 45, 0, 90, 10)}

	res, err := e.ExtractRegion(region, tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, "HLCU123", res.Text)
}

func TestParagraphText(t *testing.T) {
	e := newExtractor()
	tokens := []domain.Token{
		tok("Received", 20, 0, 80, 10), tok("in", 85, 0, 95, 10),
		tok("apparent", 0, 14, 60, 24), tok("good", 65, 14, 95, 24),
		tok("order.", 0, 28, 40, 38),
		tok("Freight", 0, 80, 50, 90), tok("prepaid.", 55, 80, 100, 90),
	}

	got := e.ParagraphText(tokens)
	assert.Equal(t, "Received in apparent good order.\nFreight prepaid.", got)
}

func TestParagraphText_IndentStartsParagraph(t *testing.T) {
	e := newExtractor()
	tokens := []domain.Token{
		tok("First", 0, 0, 40, 10),
		tok("line", 0, 14, 40, 24),
		tok("Indented", 30, 28, 90, 38),
		tok("tail", 0, 42, 40, 52),
	}

	got := e.ParagraphText(tokens)
	assert.Equal(t, "First line\nIndented tail", got)
}
