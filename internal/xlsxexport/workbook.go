// Package xlsxexport writes batch extraction results as an Excel workbook
// with a summary sheet and a flat field sheet.
package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bolx/internal/assembler"
	"bolx/internal/csvexport"
	"bolx/internal/domain"
)

const (
	SummarySheet = "Summary"
	FieldsSheet  = "Fields"
)

var fieldColumns = []string{"filename", "page", "region_id", "type", "degraded", "content"}

// Write renders results into a new workbook and writes it to w.
func Write(w io.Writer, results []domain.DocumentResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(FieldsSheet); err != nil {
		return fmt.Errorf("creating fields sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("creating wrap style: %w", err)
	}

	if err := writeRows(f, SummarySheet, csvexport.Columns, summaryRows(results)); err != nil {
		return err
	}
	if err := writeRows(f, FieldsSheet, fieldColumns, fieldRows(results)); err != nil {
		return err
	}

	for _, sheet := range []string{SummarySheet, FieldsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
			return fmt.Errorf("sizing %s: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(SummarySheet, "F", "F", 80); err != nil {
		return fmt.Errorf("sizing summary: %w", err)
	}
	if err := f.SetColStyle(SummarySheet, "F", wrap); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}
	if err := f.SetColWidth(FieldsSheet, "F", "F", 80); err != nil {
		return fmt.Errorf("sizing fields: %w", err)
	}
	if err := f.SetColStyle(FieldsSheet, "F", wrap); err != nil {
		return fmt.Errorf("styling fields: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func summaryRows(results []domain.DocumentResult) [][]any {
	rows := make([][]any, 0, len(results))
	for i := range results {
		r := &results[i]
		rows = append(rows, []any{
			csvexport.MarkdownName(r.SourceName),
			string(r.Outcome),
			r.TemplateID,
			r.MatchConfidence,
			r.Degraded,
			assembler.RenderMarkdown(*r),
		})
	}
	return rows
}

func fieldRows(results []domain.DocumentResult) [][]any {
	var rows [][]any
	for i := range results {
		for _, fld := range assembler.Fields(results[i]) {
			rows = append(rows, []any{
				results[i].SourceName,
				fld.Page + 1,
				fld.RegionID,
				string(fld.Type),
				fld.Degraded,
				fld.Content,
			})
		}
	}
	return rows
}
