package service

import (
	"context"
	"errors"
	"fmt"

	"bolx/internal/assembler"
	"bolx/internal/config"
	"bolx/internal/domain"
	"bolx/internal/extractor"
	"bolx/internal/grid"
	"bolx/internal/layout"
	"bolx/internal/matcher"
	"bolx/internal/textproc"
)

// TemplateCatalog is the read side of the template catalog. The pipeline
// only scores All; Get serves lookups by id.
type TemplateCatalog interface {
	All() []domain.Template
	Get(id string) (*domain.Template, error)
}

// Pipeline runs one document through normalisation, matching, extraction
// and assembly. It is safe for concurrent use.
type Pipeline struct {
	normalizer *layout.Normalizer
	matcher    *matcher.Matcher
	extractor  *extractor.Extractor
	catalog    TemplateCatalog
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	normalizer *layout.Normalizer,
	m *matcher.Matcher,
	ext *extractor.Extractor,
	catalog TemplateCatalog,
) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		matcher:    m,
		extractor:  ext,
		catalog:    catalog,
	}
}

// NewPipelineFromConfig wires every pipeline stage from the extraction
// settings.
func NewPipelineFromConfig(cfg *config.ExtractionConfig, catalog TemplateCatalog) *Pipeline {
	ext := extractor.New(
		cfg.ExtractorOptions(),
		grid.NewResolver(cfg.GridOptions()),
		textproc.NewProcessor(cfg.TextOptions()),
	)
	return NewPipeline(
		layout.NewNormalizer(cfg.LayoutOptions()),
		matcher.New(cfg.MatcherOptions()),
		ext,
		catalog,
	)
}

// Process extracts doc. Every document yields a result: no-match and
// per-document failures are reported through the result outcome. The
// returned error is non-nil only when the whole run cannot proceed
// (domain.ErrNoTemplates) or ctx ended.
func (p *Pipeline) Process(ctx context.Context, doc domain.SourceDocument) (domain.DocumentResult, error) {
	if len(doc.Pages) == 0 {
		return assembler.Failed(doc, fmt.Errorf("%w: document has no pages", domain.ErrInvalidLayout)), nil
	}

	layouts := p.normalizer.NormalizeDocument(doc)

	// Extract with the scored template, not a fresh catalog lookup.
	best, err := p.matcher.Select(layouts, p.catalog.All())
	switch {
	case errors.Is(err, domain.ErrNoTemplates):
		return assembler.Failed(doc, err), err
	case errors.Is(err, domain.ErrNoTemplateMatch):
		return assembler.NoMatch(doc, err), nil
	case err != nil:
		return assembler.Failed(doc, err), nil
	}

	tpl, match := best.Template, best.Result()

	pages := make([]domain.PageResult, 0, len(layouts))
	for i, lay := range layouts {
		if err := ctx.Err(); err != nil {
			return assembler.Failed(doc, err), err
		}
		page, ok := templatePage(tpl, match.PageMapping[i])
		if !ok {
			return assembler.Failed(doc, fmt.Errorf("template %s has no page %d", tpl.ID, match.PageMapping[i])), nil
		}
		pr, err := p.extractor.ExtractPage(ctx, lay, page, tpl.IncludeUnboxed)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return assembler.Failed(doc, ctxErr), ctxErr
			}
			return assembler.Failed(doc, fmt.Errorf("extracting page %d: %w", lay.PageIndex, err)), nil
		}
		pages = append(pages, pr)
	}

	return assembler.Assemble(doc, tpl, match, pages), nil
}

func templatePage(t *domain.Template, index int) (domain.TemplatePage, bool) {
	for _, p := range t.Pages {
		if p.Index == index {
			return p, true
		}
	}
	return domain.TemplatePage{}, false
}
