package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"facturo/internal/domain"
)

const (
	summarySheet = "Invoices"
	linesSheet   = "Line Items"
)

// lineColumns defines the header of the line items sheet.
var lineColumns = []string{
	"Invoice Number",
	"Description",
	"Quantity",
	"Unit Price",
	"Line Total",
	"Tax Rate",
	"Confidence",
}

// WriteXLSX renders records as an Excel workbook with a summary sheet and
// a per-line-item detail sheet.
func WriteXLSX(w io.Writer, records []domain.InvoiceRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return fmt.Errorf("creating lines sheet: %w", err)
	}

	if err := setRow(f, summarySheet, 1, toAny(columns)); err != nil {
		return err
	}
	if err := setRow(f, linesSheet, 1, toAny(lineColumns)); err != nil {
		return err
	}

	lineRow := 2
	for i := range records {
		r := &records[i]
		if err := setRow(f, summarySheet, i+2, toAny(recordToRow(r))); err != nil {
			return err
		}
		for j := range r.Lines {
			l := &r.Lines[j]
			row := []interface{}{
				r.InvoiceNumber,
				l.Description,
				l.Quantity,
				l.UnitPrice.StringFixed(2),
				l.LineTotal.StringFixed(2),
				"",
				l.Confidence,
			}
			if l.TaxRate != nil {
				row[5] = *l.TaxRate
			}
			if err := setRow(f, linesSheet, lineRow, row); err != nil {
				return err
			}
			lineRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
