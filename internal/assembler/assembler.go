// Package assembler builds the final DocumentResult from per-page
// extractions and renders it for humans.
package assembler

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"bolx/internal/domain"
)

// Assemble combines page results into a matched DocumentResult. Pages are
// ordered by template page, then document page; region order inside a page is
// kept as given.
func Assemble(doc domain.SourceDocument, tpl *domain.Template, match *domain.MatchResult, pages []domain.PageResult) domain.DocumentResult {
	sorted := append([]domain.PageResult(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TemplatePage != sorted[j].TemplatePage {
			return sorted[i].TemplatePage < sorted[j].TemplatePage
		}
		return sorted[i].DocPage < sorted[j].DocPage
	})

	res := base(doc)
	res.Outcome = domain.OutcomeMatched
	res.TemplateID = match.TemplateID
	res.TemplateName = match.TemplateName
	res.TemplateVersion = match.TemplateVersion
	res.MatchConfidence = match.Confidence
	res.PageMapping = append([]int(nil), match.PageMapping...)
	res.Pages = sorted
	if tpl != nil {
		res.TemplatePages = len(tpl.Pages)
	}
	for _, p := range sorted {
		for _, r := range p.Regions {
			if r.Degraded {
				res.Degraded = true
			}
		}
	}
	return res
}

// NoMatch records a document no template could explain. The best candidate
// is kept when err carries one.
func NoMatch(doc domain.SourceDocument, err error) domain.DocumentResult {
	res := base(doc)
	res.Outcome = domain.OutcomeNoMatch
	res.Error = err.Error()
	var nm *domain.NoTemplateMatchError
	if errors.As(err, &nm) {
		res.TemplateID = nm.BestTemplate
		res.MatchConfidence = nm.BestConfidence
	}
	return res
}

// Failed records a document whose processing failed.
func Failed(doc domain.SourceDocument, err error) domain.DocumentResult {
	res := base(doc)
	res.Outcome = domain.OutcomeFailed
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func base(doc domain.SourceDocument) domain.DocumentResult {
	return domain.DocumentResult{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		SourceName:    doc.Name,
		DocumentPages: len(doc.Pages),
		ProcessedAt:   time.Now().UTC(),
	}
}

// Field is one entry of the flat per-document output.
type Field struct {
	Page     int               `json:"page"`
	RegionID string            `json:"region_id"`
	Type     domain.RegionKind `json:"type"`
	Content  string            `json:"content"`
	Degraded bool              `json:"degraded,omitempty"`
}

// Fields flattens a result into ordered region entries. Tables are rendered
// as Markdown pipe tables.
func Fields(res domain.DocumentResult) []Field {
	var out []Field
	for _, p := range res.Pages {
		for _, r := range p.Regions {
			content := r.Text
			if r.Table != nil {
				content = MarkdownTable(r.Table)
			}
			out = append(out, Field{
				Page:     p.DocPage,
				RegionID: r.RegionID,
				Type:     r.Kind,
				Content:  content,
				Degraded: r.Degraded,
			})
		}
	}
	return out
}
