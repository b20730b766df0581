// Package export writes the KPI table to spreadsheet and CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bankbench-dev/bankbench/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetKPI    = "KPI"
	SheetMarket = "Market"
)

// Header returns the column names shared by the workbook and the CSV export:
// bank, the derived fields, then every position.
func Header(table *model.KPITable) []string {
	header := []string{"bank"}
	header = append(header, model.DerivedFields...)
	if table != nil {
		header = append(header, table.Positions...)
	}
	return header
}

func rowValues(table *model.KPITable, row model.KPIRow) []float64 {
	derived := row.Derived()
	values := make([]float64, 0, len(model.DerivedFields)+len(table.Positions))
	for _, f := range model.DerivedFields {
		values = append(values, derived[f])
	}
	for _, p := range table.Positions {
		values = append(values, row.Value(p))
	}
	return values
}

// WriteWorkbook writes an XLSX workbook with one KPI row per bank and a
// sheet of market averages.
func WriteWorkbook(w io.Writer, table *model.KPITable, avg model.MarketAverages) error {
	if table == nil {
		table = &model.KPITable{}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetKPI); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMarket); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	header := Header(table)
	if err := writeRow(f, SheetKPI, 1, toCells(header)); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cells := []any{row.Bank}
		for _, v := range rowValues(table, row) {
			cells = append(cells, cellValue(v))
		}
		if err := writeRow(f, SheetKPI, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleHeader(f, SheetKPI, len(header), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetKPI, "A", "A", 32); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	if err := writeRow(f, SheetMarket, 1, []any{"field", "average"}); err != nil {
		return err
	}
	for i, field := range avg.Keys() {
		if err := writeRow(f, SheetMarket, i+2, []any{field, cellValue(avg[field])}); err != nil {
			return err
		}
	}
	if err := styleHeader(f, SheetMarket, 2, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetMarket, "A", "A", 48); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to path, creating parent directories.
func SaveWorkbook(path string, table *model.KPITable, avg model.MarketAverages) error {
	return saveFile(path, func(w io.Writer) error {
		return WriteWorkbook(w, table, avg)
	})
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// cellValue leaves undefined values blank.
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	end, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

// WriteCSV writes the KPI table as a wide CSV with the same columns as the
// workbook's KPI sheet.
func WriteCSV(w io.Writer, table *model.KPITable) error {
	if table == nil {
		table = &model.KPITable{}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(table)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range table.Rows {
		record := []string{row.Bank}
		for _, v := range rowValues(table, row) {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s: %w", row.Bank, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the wide CSV to path, creating parent directories.
func SaveCSV(path string, table *model.KPITable) error {
	return saveFile(path, func(w io.Writer) error {
		return WriteCSV(w, table)
	})
}

// Save picks the format from the extension of path: ".xlsx" or ".csv".
func Save(path string, table *model.KPITable, avg model.MarketAverages) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return SaveWorkbook(path, table, avg)
	case ".csv":
		return SaveCSV(path, table)
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx or .csv)", ext)
	}
}

func saveFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(fh); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
