package assembler_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolx/internal/assembler"
	"bolx/internal/domain"
)

func sampleDoc() domain.SourceDocument {
	return domain.SourceDocument{ID: "doc-1", Name: "bol_001.json", Pages: make([]domain.RawPage, 2)}
}

func sampleMatch() *domain.MatchResult {
	return &domain.MatchResult{
		TemplateID:      "hapag",
		TemplateName:    "Hapag BOL",
		TemplateVersion: 2,
		PageMapping:     []int{0, 0},
		Confidence:      0.91,
	}
}

func TestAssemble_OrdersPagesAndFlagsDegraded(t *testing.T) {
	tpl := &domain.Template{Pages: []domain.TemplatePage{{Index: 0}}}
	pages := []domain.PageResult{
		{DocPage: 1, TemplatePage: 0, Regions: []domain.RegionResult{{RegionID: "c", Degraded: true, Kind: domain.RegionTable}}},
		{DocPage: 0, TemplatePage: 0, Regions: []domain.RegionResult{{RegionID: "b"}, {RegionID: "a"}}},
	}

	res := assembler.Assemble(sampleDoc(), tpl, sampleMatch(), pages)

	assert.Equal(t, domain.OutcomeMatched, res.Outcome)
	assert.Equal(t, "hapag", res.TemplateID)
	assert.Equal(t, 0.91, res.MatchConfidence)
	assert.Equal(t, 2, res.DocumentPages)
	assert.Equal(t, 1, res.TemplatePages)
	assert.True(t, res.Degraded)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 0, res.Pages[0].DocPage)
	assert.Equal(t, "b", res.Pages[0].Regions[0].RegionID)
	assert.Equal(t, "a", res.Pages[0].Regions[1].RegionID)
}

func TestNoMatch_KeepsBestCandidate(t *testing.T) {
	err := &domain.NoTemplateMatchError{BestTemplate: "maersk", BestConfidence: 0.41, Threshold: 0.6}

	res := assembler.NoMatch(sampleDoc(), err)

	assert.Equal(t, domain.OutcomeNoMatch, res.Outcome)
	assert.Equal(t, "maersk", res.TemplateID)
	assert.Equal(t, 0.41, res.MatchConfidence)
	assert.Contains(t, res.Error, "maersk")
}

func TestFailed(t *testing.T) {
	res := assembler.Failed(sampleDoc(), errors.New("boom"))
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, "boom", res.Error)
	assert.Equal(t, "doc-1", res.DocumentID)
}

func TestMarkdownTable(t *testing.T) {
	table := &domain.Table{Rows: [][]string{
		{"PALLETS", "WEIGHT"},
		{"10", "500 KG | net"},
	}}

	got := assembler.MarkdownTable(table)

	want := "| PALLETS | WEIGHT |\n| --- | --- |\n| 10 | 500 KG \\| net |\n"
	assert.Equal(t, want, got)
	assert.Equal(t, "", assembler.MarkdownTable(&domain.Table{}))
}

func TestRenderMarkdown_Matched(t *testing.T) {
	res := assembler.Assemble(sampleDoc(), &domain.Template{Pages: make([]domain.TemplatePage, 1)}, sampleMatch(), []domain.PageResult{{
		DocPage: 0,
		Regions: []domain.RegionResult{
			{RegionID: "date", Label: "Date", Kind: domain.RegionGeneral, Text: "DATE August 26, 2025"},
			{RegionID: "cargo", Label: "Cargo", Kind: domain.RegionTable, Table: &domain.Table{Rows: [][]string{{"A", "B"}, {"1", "2"}}}},
			{RegionID: "notes", Label: "Notes", Kind: domain.RegionTable, Degraded: true, Text: "loose text"},
			{RegionID: "empty", Label: "Empty", Kind: domain.RegionGeneral},
		},
		Unboxed: []domain.TextBlock{{Text: "footer"}},
	}})

	md := assembler.RenderMarkdown(res)

	assert.Contains(t, md, "**Template Used:** Hapag BOL (hapag v2)")
	assert.Contains(t, md, "**Match Confidence:** 0.91")
	assert.Contains(t, md, "### Date\n\nDATE August 26, 2025\n")
	assert.Contains(t, md, "| A | B |\n| --- | --- |\n| 1 | 2 |\n")
	assert.Contains(t, md, "### Notes (degraded)")
	assert.Contains(t, md, "### Empty\n\n_empty_")
	assert.Contains(t, md, "footer")
	assert.Less(t, strings.Index(md, "### Date"), strings.Index(md, "### Cargo"))
}

func TestRenderMarkdown_NoMatch(t *testing.T) {
	res := assembler.NoMatch(sampleDoc(), &domain.NoTemplateMatchError{BestTemplate: "x", BestConfidence: 0.2, Threshold: 0.6})
	md := assembler.RenderMarkdown(res)

	assert.Contains(t, md, "**Outcome:** no_match")
	assert.Contains(t, md, "**Best Candidate:** x (0.20)")
}

func TestRenderHTML_Table(t *testing.T) {
	html, err := assembler.RenderHTML("| A | B |\n| --- | --- |\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>1</td>")
}

func TestFields(t *testing.T) {
	res := domain.DocumentResult{Pages: []domain.PageResult{{Regions: []domain.RegionResult{
		{RegionID: "date", Kind: domain.RegionGeneral, Text: "today"},
		{RegionID: "cargo", Kind: domain.RegionTable, Table: &domain.Table{Rows: [][]string{{"x"}}}},
	}}}}

	fields := assembler.Fields(res)
	require.Len(t, fields, 2)
	assert.Equal(t, "today", fields[0].Content)
	assert.Equal(t, "| x |\n| --- |\n", fields[1].Content)
}
