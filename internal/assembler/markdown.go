package assembler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"bolx/internal/domain"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderMarkdown renders a DocumentResult as a Markdown report.
func RenderMarkdown(res domain.DocumentResult) string {
	var b strings.Builder
	b.WriteString("## BOL Extraction Results\n\n")

	if res.Outcome != domain.OutcomeMatched {
		fmt.Fprintf(&b, "**Document:** %s\n", res.SourceName)
		fmt.Fprintf(&b, "**Outcome:** %s\n", res.Outcome)
		if res.TemplateID != "" {
			fmt.Fprintf(&b, "**Best Candidate:** %s (%.2f)\n", res.TemplateID, res.MatchConfidence)
		}
		if res.Error != "" {
			fmt.Fprintf(&b, "**Error:** %s\n", res.Error)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "**Template Used:** %s (%s v%d)\n", res.TemplateName, res.TemplateID, res.TemplateVersion)
	fmt.Fprintf(&b, "**Match Confidence:** %.2f\n", res.MatchConfidence)
	fmt.Fprintf(&b, "**Document Pages:** %d\n", res.DocumentPages)
	fmt.Fprintf(&b, "**Template Pages:** %d\n", res.TemplatePages)
	if res.Degraded {
		b.WriteString("**Degraded:** yes\n")
	}

	for _, p := range res.Pages {
		fmt.Fprintf(&b, "\n---\n\n**Page %d** (template page %d)\n\n", p.DocPage+1, p.TemplatePage+1)
		for _, r := range p.Regions {
			writeRegion(&b, r)
		}
		for _, blk := range p.Unboxed {
			b.WriteString(blk.Text)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func writeRegion(b *strings.Builder, r domain.RegionResult) {
	fmt.Fprintf(b, "### %s", r.Label)
	if r.Degraded {
		b.WriteString(" (degraded)")
	}
	b.WriteString("\n\n")

	switch {
	case r.Table != nil && r.Table.RowCount() > 0:
		b.WriteString(MarkdownTable(r.Table))
	case r.Text != "":
		b.WriteString(r.Text)
		b.WriteString("\n")
	default:
		b.WriteString("_empty_\n")
	}
	b.WriteString("\n")
}

// MarkdownTable renders t as a pipe table. The first row is the header and
// is followed by a separator row; pipes in cells are escaped.
func MarkdownTable(t *domain.Table) string {
	if t.RowCount() == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderHTML converts Markdown produced by RenderMarkdown to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}
