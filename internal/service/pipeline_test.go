package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/extractor"
	"bolx/internal/grid"
	"bolx/internal/layout"
	"bolx/internal/matcher"
	"bolx/internal/service"
	"bolx/internal/textproc"
)

type memCatalog []domain.Template

func (c memCatalog) All() []domain.Template { return c }

func (c memCatalog) Get(id string) (*domain.Template, error) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

func newPipeline(catalog service.TemplateCatalog) *service.Pipeline {
	proc := textproc.NewProcessor(textproc.DefaultOptions())
	return service.NewPipeline(
		layout.NewNormalizer(layout.DefaultOptions()),
		matcher.New(matcher.DefaultOptions()),
		extractor.New(extractor.DefaultOptions(), grid.NewResolver(grid.DefaultOptions()), proc),
		catalog,
	)
}

func bolTemplate() domain.Template {
	return domain.Template{
		ID:      "bol",
		Name:    "Bill of Lading",
		Version: 1,
		Pages: []domain.TemplatePage{{
			Index: 0,
			Regions: []domain.Region{
				{ID: "date", Label: "Date", Kind: domain.RegionGeneral, BBox: domain.NewBBox(0, 0, 190, 40), Order: 1},
				{ID: "cargo", Label: "Cargo", Kind: domain.RegionTable, BBox: domain.NewBBox(0, 100, 300, 200), Order: 2, Grid: &domain.TableGridSpec{}},
			},
		}},
	}
}

func raw(text string, x0, y0, x1, y1 float64) domain.RawToken {
	return domain.RawToken{Text: text, BBox: [4]float64{x0, y0, x1, y1}, Confidence: 0.99}
}

func line(o domain.Orientation, pos, start, end float64) domain.LineSegment {
	return domain.LineSegment{Orientation: o, Position: pos, Start: start, End: end}
}

func bolDocument() domain.SourceDocument {
	return domain.SourceDocument{
		ID:   "doc-1",
		Name: "bol_0001.json",
		Pages: []domain.RawPage{{
			Index:  0,
			Width:  612,
			Height: 792,
			Tokens: []domain.RawToken{
				raw("WEIGHT", 170, 115, 230, 130),
				raw("DATE", 10, 10, 50, 25),
				raw("August", 60, 10, 110, 25),
				raw("26,", 115, 10, 135, 25),
				raw("2025", 140, 10, 175, 25),
				raw("PALLETS", 20, 115, 80, 130),
				raw("10", 20, 165, 40, 180),
				raw("500", 170, 165, 195, 180),
				raw("KG", 200, 165, 220, 180),
			},
			Lines: []domain.LineSegment{
				line(domain.Horizontal, 100, 0, 300),
				line(domain.Horizontal, 150, 0, 300),
				line(domain.Horizontal, 200, 0, 300),
				line(domain.Vertical, 0, 100, 200),
				line(domain.Vertical, 150, 100, 200),
				line(domain.Vertical, 300, 100, 200),
			},
		}},
	}
}

func TestPipeline_ExtractsMatchedDocument(t *testing.T) {
	p := newPipeline(memCatalog{bolTemplate()})

	res, err := p.Process(context.Background(), bolDocument())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeMatched, res.Outcome)
	assert.Equal(t, "bol", res.TemplateID)
	assert.GreaterOrEqual(t, res.MatchConfidence, 0.6)
	assert.Equal(t, []int{0}, res.PageMapping)
	assert.False(t, res.Degraded)

	require.Len(t, res.Pages, 1)
	regions := res.Pages[0].Regions
	require.Len(t, regions, 2)

	assert.Equal(t, "date", regions[0].RegionID)
	assert.Equal(t, "DATE August 26, 2025", regions[0].Text)

	assert.Equal(t, "cargo", regions[1].RegionID)
	require.NotNil(t, regions[1].Table)
	assert.Equal(t, [][]string{{"PALLETS", "WEIGHT"}, {"10", "500 KG"}}, regions[1].Table.Rows)
	assert.Equal(t, domain.GridSourceLines, regions[1].GridSource)
}

func TestPipeline_NoTemplateMatch(t *testing.T) {
	p := newPipeline(memCatalog{bolTemplate()})
	doc := domain.SourceDocument{
		Name: "letter.json",
		Pages: []domain.RawPage{{
			Width: 612, Height: 792,
			Tokens: []domain.RawToken{raw("Dear", 400, 600, 440, 615), raw("Sir", 445, 600, 470, 615)},
		}},
	}

	res, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoMatch, res.Outcome)
	assert.Equal(t, "bol", res.TemplateID)
	assert.Less(t, res.MatchConfidence, 0.6)
	assert.Empty(t, res.Pages)
	assert.NotEmpty(t, res.Error)
}

func TestPipeline_NoTemplates(t *testing.T) {
	p := newPipeline(memCatalog{})

	res, err := p.Process(context.Background(), bolDocument())
	assert.ErrorIs(t, err, domain.ErrNoTemplates)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}

func TestPipeline_DocumentWithoutPages(t *testing.T) {
	p := newPipeline(memCatalog{bolTemplate()})

	res, err := p.Process(context.Background(), domain.SourceDocument{Name: "empty.json"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Error, "no pages")
}

func TestPipeline_CanceledContext(t *testing.T) {
	p := newPipeline(memCatalog{bolTemplate()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Process(ctx, bolDocument())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}

// reloadingCatalog serves a different template from Get than from All, as a
// catalog reloaded between the two calls would.
type reloadingCatalog struct {
	scored   domain.Template
	reloaded domain.Template
}

func (c reloadingCatalog) All() []domain.Template { return []domain.Template{c.scored} }

func (c reloadingCatalog) Get(string) (*domain.Template, error) { return &c.reloaded, nil }

func TestPipeline_UsesScoredTemplateAcrossReload(t *testing.T) {
	reloaded := bolTemplate()
	reloaded.Version = 2
	reloaded.Pages[0].Index = 5
	p := newPipeline(reloadingCatalog{scored: bolTemplate(), reloaded: reloaded})

	res, err := p.Process(context.Background(), bolDocument())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMatched, res.Outcome)
	assert.Equal(t, 1, res.TemplateVersion)
	assert.Equal(t, []int{0}, res.PageMapping)
}
