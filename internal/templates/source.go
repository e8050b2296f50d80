package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bolx/internal/port"
)

// RawTemplate is an undecoded template definition from some source.
type RawTemplate struct {
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// Source fetches raw template definitions.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawTemplate, error)
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DirSource reads template files from a local directory.
type DirSource struct {
	Dir string
}

// Name implements Source.
func (s DirSource) Name() string { return "dir:" + s.Dir }

// Fetch implements Source. Files are returned in name order.
func (s DirSource) Fetch(_ context.Context) ([]RawTemplate, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %s: %w", s.Dir, err)
	}
	var out []RawTemplate
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", path, err)
		}
		var mod time.Time
		if info, err := e.Info(); err == nil {
			mod = info.ModTime().UTC()
		}
		out = append(out, RawTemplate{Name: e.Name(), Data: data, UpdatedAt: mod})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// StorageSource reads template files under a prefix of an object storage
// bucket.
type StorageSource struct {
	Storage port.ObjectStorage
	Bucket  string
	Prefix  string
}

// Name implements Source.
func (s StorageSource) Name() string { return "s3://" + s.Bucket + "/" + s.Prefix }

// Fetch implements Source.
func (s StorageSource) Fetch(ctx context.Context) ([]RawTemplate, error) {
	objects, err := s.Storage.List(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	var out []RawTemplate
	for _, obj := range objects {
		if !isTemplateFile(obj.Key) {
			continue
		}
		data, err := s.Storage.Download(ctx, s.Bucket, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("downloading template %s: %w", obj.Key, err)
		}
		out = append(out, RawTemplate{Name: filepath.Base(obj.Key), Data: data, UpdatedAt: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RepositorySource reads templates stored in the database.
type RepositorySource struct {
	Repo port.TemplateRepository
}

// Name implements Source.
func (s RepositorySource) Name() string { return "db" }

// Fetch implements Source.
func (s RepositorySource) Fetch(ctx context.Context) ([]RawTemplate, error) {
	recs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	out := make([]RawTemplate, 0, len(recs))
	for _, r := range recs {
		out = append(out, RawTemplate{Name: r.ID + ".json", Data: r.Definition, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}
