// Command seedtemplates converts a directory of template files into a SQL
// seed file for the templates table. Every template is validated first;
// the command fails if any file is malformed.
// Usage: go run ./cmd/seedtemplates [templates-dir] [output.sql]
// Output: db/seeds/templates.sql
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bolx/internal/config"
	"bolx/internal/domain"
	"bolx/internal/templates"
)

const batchSize = 50

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir := cfg.Templates.Dir
	outPath := "db/seeds/templates.sql"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	tpls, err := templates.LoadDir(context.Background(), dir, cfg.Extraction.RegionOverlapTolerance)
	if err != nil {
		return fmt.Errorf("load templates from %s: %w", dir, err)
	}
	if len(tpls) == 0 {
		return fmt.Errorf("no templates found in %s", dir)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Template seed data generated from " + dir + ".",
		fmt.Sprintf("-- %d templates in batches of %d.", len(tpls), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(tpls); i += batchSize {
		end := i + batchSize
		if end > len(tpls) {
			end = len(tpls)
		}
		if err := writeBatch(out, tpls[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d templates (%d batches) in %s",
		len(tpls), (len(tpls)+batchSize-1)/batchSize, outPath)
	return nil
}

func writeBatch(out *os.File, batch []domain.Template) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO templates (id, name, version, definition) VALUES\n")

	for i := range batch {
		t := batch[i]
		if t.Version == 0 {
			t.Version = 1
		}
		def, err := templates.Encode(t)
		if err != nil {
			return fmt.Errorf("encode %s: %w", t.ID, err)
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %d, '%s'::jsonb)",
			escapeSQL(t.ID), escapeSQL(t.Name), t.Version, escapeSQL(string(def)))
	}

	b.WriteString("\nON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, version = EXCLUDED.version,\n")
	b.WriteString("  definition = EXCLUDED.definition, updated_at = NOW()\n")
	b.WriteString("  WHERE templates.version <= EXCLUDED.version;\n")

	_, err := out.WriteString(b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
