package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bolx/internal/assembler"
	"bolx/internal/config"
	"bolx/internal/csvexport"
	"bolx/internal/domain"
	"bolx/internal/service"
	"bolx/internal/templates"
	"bolx/internal/xlsxexport"
)

type extractOptions struct {
	input     string
	output    string
	templates string
	csvPath   string
	xlsxPath  string
}

func newExtractCmd() *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every layout in a folder and write Markdown results",
		Long: "Reads positioned-token layout JSON files, matches each against the template catalog\n" +
			"and writes extracted_<name>_template.md per document. A CSV summary is appended\n" +
			"when --csv is set and an XLSX workbook is written when --xlsx is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.templates == "" {
				opts.templates = cfg.Templates.Dir
			}
			if opts.output == "" {
				opts.output = cfg.Output.Dir
			}
			if opts.csvPath == "" {
				opts.csvPath = cfg.Output.CSVPath
			}
			if opts.xlsxPath == "" {
				opts.xlsxPath = cfg.Output.XLSXPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := runExtract(ctx, &cfg.Extraction, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents: %d matched, %d no match, %d failed, %d degraded (%s)\n",
				summary.Total, summary.Matched, summary.NoMatch, summary.Failed, summary.Degraded, summary.Duration)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "layout JSON file or folder of layout files")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "folder for Markdown results (default BOLX_OUTPUT_DIR)")
	cmd.Flags().StringVarP(&opts.templates, "templates", "t", "", "template folder (default BOLX_TEMPLATES_DIR)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "append a summary row per document to this CSV file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "write a summary workbook to this XLSX file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runExtract(ctx context.Context, cfg *config.ExtractionConfig, opts extractOptions) (domain.BatchSummary, error) {
	catalog := templates.NewCatalog(cfg.RegionOverlapTolerance, templates.DirSource{Dir: opts.templates})
	report, err := catalog.Reload(ctx)
	if err != nil {
		return domain.BatchSummary{}, fmt.Errorf("load templates from %s: %w", opts.templates, err)
	}
	for name, reason := range report.Skipped {
		log.Printf("bolx: skipped template %s: %v", name, reason)
	}

	docs, err := readLayouts(opts.input)
	if err != nil {
		return domain.BatchSummary{}, err
	}
	if len(docs) == 0 {
		return domain.BatchSummary{}, fmt.Errorf("no layout files found in %s", opts.input)
	}

	pipeline := service.NewPipelineFromConfig(cfg, catalog)
	runner := service.NewBatchRunner(pipeline, service.BatchConfig{
		Concurrency:     cfg.Concurrency,
		DocumentTimeout: cfg.DocumentTimeout,
	})
	results, summary, err := runner.Run(ctx, docs)
	if err != nil {
		return summary, err
	}

	if err := writeMarkdown(opts.output, results); err != nil {
		return summary, err
	}
	if opts.csvPath != "" {
		if err := appendCSV(opts.csvPath, results); err != nil {
			return summary, err
		}
	}
	if opts.xlsxPath != "" {
		if err := writeXLSX(opts.xlsxPath, results); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// readLayouts loads one layout file or every .json file in a folder, in
// name order. Unreadable files become documents without pages so they are
// reported as failed rather than silently dropped.
func readLayouts(input string) ([]domain.SourceDocument, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("read input folder: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				paths = append(paths, filepath.Join(input, e.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{input}
	}

	docs := make([]domain.SourceDocument, 0, len(paths))
	for _, p := range paths {
		doc := domain.SourceDocument{}
		data, err := os.ReadFile(p)
		if err == nil {
			err = json.Unmarshal(data, &doc)
		}
		if err != nil {
			log.Printf("bolx: %s: %v", p, err)
			doc = domain.SourceDocument{}
		}
		doc.Name = filepath.Base(p)
		docs = append(docs, doc)
	}
	return docs, nil
}

func writeMarkdown(dir string, results []domain.DocumentResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}
	for i := range results {
		path := filepath.Join(dir, csvexport.MarkdownName(results[i].SourceName))
		if err := os.WriteFile(path, []byte(assembler.RenderMarkdown(results[i])), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// appendCSV appends result rows, writing the BOM and header only when the
// file is new or empty.
func appendCSV(path string, results []domain.DocumentResult) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	w := csvexport.NewWriter(f)
	if info.Size() == 0 {
		if _, err := f.Write(csvexport.BOM); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := w.WriteResults(results); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, results []domain.DocumentResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create xlsx: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := xlsxexport.Write(f, results); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
