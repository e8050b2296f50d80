package templates

import (
	"fmt"
	"math"
	"regexp"

	"bolx/internal/domain"
)

// Validate checks a template against the schema rules and returns a
// *domain.MalformedTemplateError listing every problem found.
func Validate(t domain.Template, overlapTolerance float64) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if t.ID == "" {
		add("missing id")
	}
	if len(t.Pages) == 0 {
		add("no pages")
	}

	seenPages := make(map[int]bool, len(t.Pages))
	for _, p := range t.Pages {
		if p.Index < 0 {
			add("page %d: negative index", p.Index)
		}
		if seenPages[p.Index] {
			add("page %d: declared twice", p.Index)
		}
		seenPages[p.Index] = true

		seenRegions := make(map[string]bool, len(p.Regions))
		for _, r := range p.Regions {
			prefix := fmt.Sprintf("page %d region %q", p.Index, r.ID)
			if r.ID == "" {
				add("page %d: region without id", p.Index)
			}
			if seenRegions[r.ID] {
				add("%s: duplicate id", prefix)
			}
			seenRegions[r.ID] = true

			if !r.Kind.Valid() {
				add("%s: unknown type %q", prefix, r.Kind)
			}
			if r.BBox.IsEmpty() {
				add("%s: empty bbox", prefix)
			}
			if r.ExpectedTokens < 0 {
				add("%s: negative expected_tokens", prefix)
			}
			switch {
			case r.Kind == domain.RegionTable && r.Grid == nil:
				add("%s: table without table_grid", prefix)
			case r.Kind != domain.RegionTable && r.Grid != nil:
				add("%s: table_grid on a %s region", prefix, r.Kind)
			}
			if r.Grid != nil && (r.Grid.Sensitivity < 0 || r.Grid.Sensitivity > 1) {
				add("%s: sensitivity outside [0,1]", prefix)
			}
			for _, rule := range r.Cleanup {
				if _, err := regexp.Compile(rule.Pattern); err != nil {
					add("%s: bad cleanup pattern %q", prefix, rule.Pattern)
				}
			}
		}

		for i := 0; i < len(p.Regions); i++ {
			for j := i + 1; j < len(p.Regions); j++ {
				if ratio := OverlapRatio(p.Regions[i].BBox, p.Regions[j].BBox); ratio > overlapTolerance {
					add("page %d: regions %q and %q overlap by %.0f%%",
						p.Index, p.Regions[i].ID, p.Regions[j].ID, ratio*100)
				}
			}
		}
	}

	if len(problems) > 0 {
		return &domain.MalformedTemplateError{TemplateID: t.ID, Problems: problems}
	}
	return nil
}

// OverlapRatio returns the intersection area divided by the smaller box area.
func OverlapRatio(a, b domain.BBox) float64 {
	smaller := math.Min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0
	}
	return a.Intersection(b).Area() / smaller
}
