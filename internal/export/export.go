// Package export writes transaction listings as CSV or Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/fio-node/internal/domain"
	"github.com/dvloznov/fio-node/internal/fio"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Transactions"

// ParseFormat returns the format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// Transactions writes txs to w in the given format. Columns follow the
// statement order; absent fields are left empty.
func Transactions(w io.Writer, txs []domain.Transaction, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, txs)
	case FormatXLSX:
		return writeXLSX(w, txs)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

func writeCSV(w io.Writer, txs []domain.Transaction) error {
	fields := fio.FieldNames()
	cw := csv.NewWriter(w)

	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	row := make([]string, len(fields))
	for _, tx := range txs {
		for i, name := range fields {
			row[i] = formatValue(tx[name])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, txs []domain.Transaction) error {
	fields := fio.FieldNames()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	// Header row (bold)
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for i, name := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style cell %s: %w", cell, err)
		}
	}

	// Numbers stay numeric so the sheet can sum amounts.
	for rowIdx, tx := range txs {
		for colIdx, name := range fields {
			v, ok := tx[name]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	for i, name := range fields {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to address column: %w", err)
		}
		width := float64(len(name) + 4)
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(sheetName, colName, colName, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", colName, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
