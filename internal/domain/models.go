package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawToken is a text token as handed over by the OCR/PDF collaborator.
type RawToken struct {
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

// RawPage is one page of collaborator output: tokens in arbitrary order plus
// detected ruling lines.
type RawPage struct {
	Index  int           `json:"index"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Tokens []RawToken    `json:"tokens"`
	Lines  []LineSegment `json:"lines"`
}

// SourceDocument is the materialized input for one pipeline run.
type SourceDocument struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Pages []RawPage `json:"pages"`
}

// Token is a normalized unit of extracted text.
type Token struct {
	Text       string  `json:"text"`
	BBox       BBox    `json:"bbox"`
	PageIndex  int     `json:"page_index"`
	Confidence float64 `json:"confidence"`
}

// LineSegment is a detected horizontal or vertical ruling line. Position is
// the y coordinate of a horizontal line or the x coordinate of a vertical
// one; Start and End bound it along the other axis.
type LineSegment struct {
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
	Start       float64     `json:"start"`
	End         float64     `json:"end"`
}

// Length returns the extent of the segment along its direction.
func (l LineSegment) Length() float64 {
	if l.End < l.Start {
		return l.Start - l.End
	}
	return l.End - l.Start
}

// Layout is the canonical per-page representation: tokens in reading order
// and deduplicated ruling lines.
type Layout struct {
	PageIndex int           `json:"page_index"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Tokens    []Token       `json:"tokens"`
	Lines     []LineSegment `json:"lines"`
}

// TableGridSpec describes the authored grid of a table region.
type TableGridSpec struct {
	RowBoundaries    []float64 `json:"row_boundaries"`
	ColumnBoundaries []float64 `json:"column_boundaries"`
	Sensitivity      float64   `json:"sensitivity"`
}

// CleanupRule is a regular-expression substitution applied to a region's
// extracted text.
type CleanupRule struct {
	Pattern string `json:"pattern"`
	Replace string `json:"replace"`
}

// Region is a declared area of a template page. Grid is set only for table
// regions.
type Region struct {
	ID             string         `json:"id"`
	Label          string         `json:"label"`
	Kind           RegionKind     `json:"type"`
	BBox           BBox           `json:"bbox"`
	Order          int            `json:"order"`
	ExpectedTokens int            `json:"expected_tokens,omitempty"`
	Anchor         bool           `json:"anchor,omitempty"`
	Grid           *TableGridSpec `json:"table_grid,omitempty"`
	Cleanup        []CleanupRule  `json:"cleanup,omitempty"`
}

// DisplayName returns the label, falling back to the region id.
func (r Region) DisplayName() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// TemplatePage groups the regions declared for one page.
type TemplatePage struct {
	Index   int      `json:"index"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Regions []Region `json:"regions"`
}

// Template is a named, versioned layout definition. Values are shared
// read-only across extraction runs; use Clone before changing anything.
type Template struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Version        int            `json:"version"`
	UpdatedAt      time.Time      `json:"updated_at"`
	RawText        string         `json:"raw_text,omitempty"`
	IncludeUnboxed bool           `json:"include_unboxed,omitempty"`
	Pages          []TemplatePage `json:"pages"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Pages = make([]TemplatePage, len(t.Pages))
	for i, p := range t.Pages {
		cp := p
		cp.Regions = make([]Region, len(p.Regions))
		for j, r := range p.Regions {
			cr := r
			if r.Grid != nil {
				g := *r.Grid
				g.RowBoundaries = append([]float64(nil), r.Grid.RowBoundaries...)
				g.ColumnBoundaries = append([]float64(nil), r.Grid.ColumnBoundaries...)
				cr.Grid = &g
			}
			cr.Cleanup = append([]CleanupRule(nil), r.Cleanup...)
			cp.Regions[j] = cr
		}
		out.Pages[i] = cp
	}
	return out
}

// RegionCount returns the number of regions across all pages.
func (t Template) RegionCount() int {
	n := 0
	for _, p := range t.Pages {
		n += len(p.Regions)
	}
	return n
}

// MatchResult is the Matcher's verdict for one document.
type MatchResult struct {
	TemplateID      string    `json:"template_id"`
	TemplateName    string    `json:"template_name"`
	TemplateVersion int       `json:"template_version"`
	PageMapping     []int     `json:"page_mapping"`
	PageScores      []float64 `json:"page_scores"`
	Confidence      float64   `json:"confidence"`
}

// Table is a rectangular grid of cell strings.
type Table struct {
	Rows [][]string `json:"rows"`
}

// NewTable allocates a rows x cols table of empty cells.
func NewTable(rows, cols int) *Table {
	t := &Table{Rows: make([][]string, rows)}
	for i := range t.Rows {
		t.Rows[i] = make([]string, cols)
	}
	return t
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColCount returns the number of columns.
func (t *Table) ColCount() int {
	if t == nil || len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// RegionResult is the extracted content of one region. Text is set for
// general and paragraph regions and for degraded tables.
type RegionResult struct {
	RegionID   string     `json:"region_id"`
	Label      string     `json:"label"`
	Kind       RegionKind `json:"type"`
	Text       string     `json:"text,omitempty"`
	Table      *Table     `json:"table,omitempty"`
	Degraded   bool       `json:"degraded,omitempty"`
	GridSource GridSource `json:"grid_source,omitempty"`
}

// TextBlock is a run of text that fell outside every region.
type TextBlock struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// PageResult holds the extraction output of one document page.
type PageResult struct {
	DocPage      int            `json:"doc_page"`
	TemplatePage int            `json:"template_page"`
	Regions      []RegionResult `json:"regions"`
	Unboxed      []TextBlock    `json:"unboxed,omitempty"`
}

// DocumentResult is the assembled output for one processed document.
type DocumentResult struct {
	ID              uuid.UUID    `json:"id"`
	DocumentID      string       `json:"document_id"`
	SourceName      string       `json:"source_name"`
	Outcome         Outcome      `json:"outcome"`
	TemplateID      string       `json:"template_id,omitempty"`
	TemplateName    string       `json:"template_name,omitempty"`
	TemplateVersion int          `json:"template_version,omitempty"`
	TemplatePages   int          `json:"template_pages,omitempty"`
	MatchConfidence float64      `json:"match_confidence"`
	PageMapping     []int        `json:"page_mapping,omitempty"`
	DocumentPages   int          `json:"document_pages"`
	Pages           []PageResult `json:"pages,omitempty"`
	Degraded        bool         `json:"degraded"`
	Error           string       `json:"error,omitempty"`
	ProcessedAt     time.Time    `json:"processed_at"`
}

// TemplateRecord is a template definition as persisted in the database.
type TemplateRecord struct {
	ID         string          `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Version    int             `db:"version" json:"version"`
	Definition json.RawMessage `db:"definition" json:"definition"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// ExtractionRecord is a stored DocumentResult.
type ExtractionRecord struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	JobID           *uuid.UUID      `db:"job_id" json:"job_id"`
	DocumentName    string          `db:"document_name" json:"document_name"`
	TemplateID      string          `db:"template_id" json:"template_id"`
	Outcome         Outcome         `db:"outcome" json:"outcome"`
	MatchConfidence float64         `db:"match_confidence" json:"match_confidence"`
	Degraded        bool            `db:"degraded" json:"degraded"`
	Result          json.RawMessage `db:"result" json:"result"`
	Markdown        string          `db:"markdown" json:"markdown"`
	OutputKey       string          `db:"output_key" json:"output_key"`
	OutputURL       string          `db:"-" json:"output_url,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ExtractionJob is a queued request to process a layout stored in object
// storage.
type ExtractionJob struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	SourceKey string     `db:"source_key" json:"source_key"`
	Status    JobStatus  `db:"status" json:"status"`
	Attempts  int        `db:"attempts" json:"attempts"`
	LastError string     `db:"last_error" json:"last_error"`
	ResultID  *uuid.UUID `db:"result_id" json:"result_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// BatchSummary aggregates outcomes of one batch run.
type BatchSummary struct {
	Total    int           `json:"total"`
	Matched  int           `json:"matched"`
	NoMatch  int           `json:"no_match"`
	Failed   int           `json:"failed"`
	Degraded int           `json:"degraded"`
	Duration time.Duration `json:"duration"`
}

// Summarize counts outcomes across results.
func Summarize(results []DocumentResult, elapsed time.Duration) BatchSummary {
	s := BatchSummary{Total: len(results), Duration: elapsed}
	for i := range results {
		switch results[i].Outcome {
		case OutcomeMatched:
			s.Matched++
		case OutcomeNoMatch:
			s.NoMatch++
		case OutcomeFailed:
			s.Failed++
		}
		if results[i].Degraded {
			s.Degraded++
		}
	}
	return s
}
