package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bolx/internal/assembler"
	"bolx/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the summary header row.
var Columns = []string{
	"filename",
	"outcome",
	"template",
	"confidence",
	"degraded",
	"result",
}

// Writer wraps csv.Writer for exporting extraction summaries.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteResults writes one row per result. The result column holds the
// rendered Markdown.
func (w *Writer) WriteResults(results []domain.DocumentResult) error {
	for i := range results {
		if err := w.csv.Write(ResultRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// ResultRow converts one result to a summary row.
func ResultRow(res *domain.DocumentResult) []string {
	return []string{
		MarkdownName(res.SourceName),
		string(res.Outcome),
		res.TemplateID,
		strconv.FormatFloat(res.MatchConfidence, 'f', 4, 64),
		formatBool(res.Degraded),
		assembler.RenderMarkdown(*res),
	}
}

// MarkdownName returns the per-document output file name,
// extracted_<stem>_template.md.
func MarkdownName(source string) string {
	base := source
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return fmt.Sprintf("extracted_%s_template.md", base)
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "extractions"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
