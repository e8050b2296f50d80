package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bolx/internal/domain"
	"bolx/internal/port"
	"bolx/internal/templates"
)

// TemplateSummary is the listing view of a catalog template.
type TemplateSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Pages     int       `json:"pages"`
	Regions   int       `json:"regions"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReloadResult reports the outcome of a catalog reload.
type ReloadResult struct {
	Loaded  []string          `json:"loaded"`
	Skipped map[string]string `json:"skipped"`
}

// TemplateService defines the template catalog operations.
type TemplateService interface {
	List(ctx context.Context) []TemplateSummary
	Get(ctx context.Context, id string) (*domain.Template, error)
	Reload(ctx context.Context) (*ReloadResult, error)
	Save(ctx context.Context, name string, data []byte) (*domain.Template, error)
}

// CatalogReloader is the write side of the template catalog.
type CatalogReloader interface {
	TemplateCatalog
	Reload(ctx context.Context) (*templates.LoadReport, error)
}

type templateService struct {
	catalog          CatalogReloader
	repo             port.TemplateRepository
	overlapTolerance float64
}

// NewTemplateService creates a new TemplateService. repo may be nil, in
// which case Save is unavailable.
func NewTemplateService(catalog CatalogReloader, repo port.TemplateRepository, overlapTolerance float64) TemplateService {
	return &templateService{catalog: catalog, repo: repo, overlapTolerance: overlapTolerance}
}

func (s *templateService) List(_ context.Context) []TemplateSummary {
	all := s.catalog.All()
	out := make([]TemplateSummary, 0, len(all))
	for i := range all {
		t := &all[i]
		out = append(out, TemplateSummary{
			ID:        t.ID,
			Name:      t.Name,
			Version:   t.Version,
			Pages:     len(t.Pages),
			Regions:   t.RegionCount(),
			UpdatedAt: t.UpdatedAt,
		})
	}
	return out
}

func (s *templateService) Get(_ context.Context, id string) (*domain.Template, error) {
	return s.catalog.Get(id)
}

func (s *templateService) Reload(ctx context.Context) (*ReloadResult, error) {
	report, err := s.catalog.Reload(ctx)
	res := &ReloadResult{Skipped: map[string]string{}}
	if report != nil {
		res.Loaded = report.Loaded
		for name, e := range report.Skipped {
			res.Skipped[name] = e.Error()
		}
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

// Save decodes and validates a template and stores it in the repository.
// The catalog is reloaded afterwards so the template is used immediately
// when the catalog reads from the database.
func (s *templateService) Save(ctx context.Context, name string, data []byte) (*domain.Template, error) {
	if s.repo == nil {
		return nil, errors.New("template repository is not configured")
	}
	t, err := templates.Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedTemplate, err)
	}
	if err := templates.Validate(t, s.overlapTolerance); err != nil {
		return nil, err
	}
	if t.Version == 0 {
		t.Version = 1
	}

	def, err := templates.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	rec := &domain.TemplateRecord{ID: t.ID, Name: t.Name, Version: t.Version, Definition: def}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}
	log.Printf("templateService.Save: stored template %s v%d", t.ID, t.Version)

	if _, err := s.catalog.Reload(ctx); err != nil {
		log.Printf("templateService.Save: catalog reload failed: %v", err)
	}
	return &t, nil
}
