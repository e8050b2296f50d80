package templates

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bolx/internal/domain"
	"bolx/internal/geom"
)

type authoringTemplate struct {
	TemplateName   string                   `json:"template_name"`
	RawText        string                   `json:"template_raw_text"`
	IncludeUnboxed *bool                    `json:"include_unboxed_content"`
	Pages          map[string]authoringPage `json:"pages"`
	// Single-page templates from early tool versions keep boxes at the top.
	Boxes []authoringBox `json:"boxes"`
}

type authoringPage struct {
	RawText string         `json:"page_raw_text"`
	Boxes   []authoringBox `json:"boxes"`
}

type authoringBox struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Coordinates     []float64       `json:"coordinates"`
	ExtractionOrder int             `json:"extraction_order"`
	BoxType         string          `json:"box_type"`
	TableCells      []authoringCell `json:"table_cells"`
}

type authoringCell struct {
	CellID      int       `json:"cell_id"`
	Row         int       `json:"row"`
	Col         int       `json:"col"`
	Coordinates []float64 `json:"coordinates"`
}

// IsAuthoring reports whether data looks like an authoring-tool template.
func IsAuthoring(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["template_name"]
	return ok
}

// DecodeAuthoring converts the authoring tool's JSON into a Template. Pages
// keyed "1", "2", ... become indices 0, 1, ...; table cell rectangles become
// declared row and column boundaries.
func DecodeAuthoring(data []byte) (domain.Template, error) {
	var a authoringTemplate
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Template{}, err
	}

	t := domain.Template{
		ID:             a.TemplateName,
		Name:           a.TemplateName,
		Version:        1,
		RawText:        a.RawText,
		IncludeUnboxed: true,
	}
	if a.IncludeUnboxed != nil {
		t.IncludeUnboxed = *a.IncludeUnboxed
	}

	pages := a.Pages
	if len(pages) == 0 && len(a.Boxes) > 0 {
		pages = map[string]authoringPage{"1": {RawText: a.RawText, Boxes: a.Boxes}}
	}

	keys := make([]int, 0, len(pages))
	byNum := make(map[int]authoringPage, len(pages))
	for k, p := range pages {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 {
			return domain.Template{}, fmt.Errorf("page key %q is not a positive number", k)
		}
		keys = append(keys, n)
		byNum[n] = p
	}
	sort.Ints(keys)

	for _, n := range keys {
		p := byNum[n]
		page := domain.TemplatePage{Index: n - 1}
		for i, b := range p.Boxes {
			r, err := convertBox(b, i)
			if err != nil {
				return domain.Template{}, fmt.Errorf("page %d: %w", n, err)
			}
			page.Regions = append(page.Regions, r)
		}
		t.Pages = append(t.Pages, page)
	}
	return t, nil
}

func convertBox(b authoringBox, idx int) (domain.Region, error) {
	if len(b.Coordinates) != 4 {
		return domain.Region{}, fmt.Errorf("box %q: coordinates need 4 values, got %d", b.ID, len(b.Coordinates))
	}
	id := b.ID
	if id == "" {
		id = fmt.Sprintf("box%d", idx+1)
	}
	kind := domain.RegionKind(strings.ToLower(b.BoxType))
	if kind == "" {
		kind = domain.RegionGeneral
	}
	order := b.ExtractionOrder
	if order == 0 {
		order = idx + 1
	}
	r := domain.Region{
		ID:    id,
		Label: b.Label,
		Kind:  kind,
		BBox:  domain.NewBBox(b.Coordinates[0], b.Coordinates[1], b.Coordinates[2], b.Coordinates[3]),
		Order: order,
	}
	if kind == domain.RegionTable {
		r.Grid = cellGrid(b.TableCells)
	}
	return r, nil
}

// cellGrid derives boundaries from cell rectangles. Cells spanning a whole
// row contribute only row boundaries.
func cellGrid(cells []authoringCell) *domain.TableGridSpec {
	spec := &domain.TableGridSpec{}
	if len(cells) == 0 {
		return spec
	}
	var rows, cols []float64
	for _, c := range cells {
		if len(c.Coordinates) != 4 {
			continue
		}
		box := domain.NewBBox(c.Coordinates[0], c.Coordinates[1], c.Coordinates[2], c.Coordinates[3])
		rows = append(rows, box.Y0, box.Y1)
		cols = append(cols, box.X0, box.X1)
	}
	const tolerance = 2
	spec.RowBoundaries = geom.Cluster(rows, tolerance)
	spec.ColumnBoundaries = geom.Cluster(cols, tolerance)
	return spec
}
