// Package templates loads, validates and serves the template catalog.
//
// Templates arrive either in the native schema (JSON or YAML) or in the JSON
// format written by the desktop authoring tool, which is converted on load.
package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"bolx/internal/domain"
)

// Decode parses one template file. name is used to pick the format from its
// extension and as the template id when the document carries none.
func Decode(name string, data []byte) (domain.Template, error) {
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var (
		t   domain.Template
		err error
	)
	switch ext {
	case ".yaml", ".yml":
		t, err = DecodeYAML(data)
	default:
		if IsAuthoring(data) {
			t, err = DecodeAuthoring(data)
		} else {
			t, err = DecodeJSON(data)
		}
	}
	if err != nil {
		return domain.Template{}, fmt.Errorf("decoding template %s: %w", name, err)
	}
	if t.ID == "" {
		t.ID = stem
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	normalize(&t)
	return t, nil
}

// DecodeJSON parses the native JSON schema.
func DecodeJSON(data []byte) (domain.Template, error) {
	var t domain.Template
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return domain.Template{}, err
	}
	return t, nil
}

// DecodeYAML parses the native schema written as YAML.
func DecodeYAML(data []byte) (domain.Template, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Template{}, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.Template{}, err
	}
	return DecodeJSON(raw)
}

// Encode renders a template in the native JSON schema.
func Encode(t domain.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// normalize sorts pages by index and fills region defaults. A table region
// without table_grid is left alone so Validate rejects it.
func normalize(t *domain.Template) {
	sort.SliceStable(t.Pages, func(i, j int) bool { return t.Pages[i].Index < t.Pages[j].Index })
	for pi := range t.Pages {
		for ri := range t.Pages[pi].Regions {
			r := &t.Pages[pi].Regions[ri]
			r.Kind = domain.RegionKind(strings.ToLower(string(r.Kind)))
			if r.Kind == "" {
				r.Kind = domain.RegionGeneral
			}
			if r.Label == "" {
				r.Label = r.ID
			}
		}
	}
}
