package templates

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"bolx/internal/domain"
)

// LoadReport summarises one catalog load.
type LoadReport struct {
	Loaded  []string
	Skipped map[string]error
}

type snapshot struct {
	list []domain.Template
	byID map[string]*domain.Template
}

// Catalog is the read-only set of templates used for matching. Readers get
// a consistent snapshot; Reload swaps in a new one atomically.
type Catalog struct {
	sources          []Source
	overlapTolerance float64
	current          atomic.Pointer[snapshot]
	reloadMu         sync.Mutex
}

// NewCatalog creates an empty catalog over the given sources.
func NewCatalog(overlapTolerance float64, sources ...Source) *Catalog {
	c := &Catalog{sources: sources, overlapTolerance: overlapTolerance}
	c.current.Store(&snapshot{byID: map[string]*domain.Template{}})
	return c
}

// Reload fetches, decodes and validates every template. Malformed templates
// are logged and left out. It returns domain.ErrNoTemplates when nothing
// could be loaded, in which case the previous snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) (*LoadReport, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	report := &LoadReport{Skipped: map[string]error{}}
	byID := map[string]*domain.Template{}

	for _, src := range c.sources {
		raws, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("templates.Catalog: source %s failed: %v", src.Name(), err)
			report.Skipped[src.Name()] = err
			continue
		}
		for _, raw := range raws {
			t, err := Decode(raw.Name, raw.Data)
			if err == nil {
				err = Validate(t, c.overlapTolerance)
			}
			if err != nil {
				log.Printf("templates.Catalog: skipping %s: %v", raw.Name, err)
				report.Skipped[raw.Name] = err
				continue
			}
			if t.UpdatedAt.IsZero() {
				t.UpdatedAt = raw.UpdatedAt
			}
			if prev, ok := byID[t.ID]; ok && !newer(t, *prev) {
				continue
			}
			tc := t
			byID[t.ID] = &tc
		}
	}

	if len(byID) == 0 {
		return report, domain.ErrNoTemplates
	}

	snap := &snapshot{byID: byID, list: make([]domain.Template, 0, len(byID))}
	for id, t := range byID {
		snap.list = append(snap.list, *t)
		report.Loaded = append(report.Loaded, id)
	}
	sort.Slice(snap.list, func(i, j int) bool { return snap.list[i].ID < snap.list[j].ID })
	sort.Strings(report.Loaded)
	c.current.Store(snap)

	log.Printf("templates.Catalog: loaded %d templates, skipped %d", len(report.Loaded), len(report.Skipped))
	return report, nil
}

// newer orders duplicates by Version, then UpdatedAt.
func newer(a, b domain.Template) bool {
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

// All returns the current templates ordered by id. The slice is shared and
// must not be modified.
func (c *Catalog) All() []domain.Template {
	return c.current.Load().list
}

// Get returns a template by id.
func (c *Catalog) Get(id string) (*domain.Template, error) {
	t, ok := c.current.Load().byID[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

// Len returns the number of loaded templates.
func (c *Catalog) Len() int {
	return len(c.current.Load().list)
}

// LoadDir decodes and validates every template file in dir without building
// a catalog. It returns the valid templates and one error per rejected file.
func LoadDir(ctx context.Context, dir string, overlapTolerance float64) ([]domain.Template, error) {
	raws, err := DirSource{Dir: dir}.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	var (
		out  []domain.Template
		errs []error
	)
	for _, raw := range raws {
		t, err := Decode(raw.Name, raw.Data)
		if err == nil {
			err = Validate(t, overlapTolerance)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", raw.Name, err))
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}
