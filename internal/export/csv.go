// Package export renders finished invoice records as CSV, XLSX or JSON for
// download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"facturo/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row.
var columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Supplier Name",
	"Supplier Tax ID",
	"Client Name",
	"Client Tax ID",
	"Subtotal",
	"Tax Amount",
	"Total",
	"Currency",
	"Line Item Count",
	"Confidence",
	"Requires Review",
	"Extraction Method",
	"Extracted At",
}

// CSVWriter wraps csv.Writer for exporting invoice records.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w. The BOM is the
// caller's responsibility so the writer composes with HTTP streaming.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of records to CSV rows and writes them.
func (w *CSVWriter) WriteRecords(records []domain.InvoiceRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV renders records as a complete CSV document including the BOM.
func WriteCSV(w io.Writer, records []domain.InvoiceRecord) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteRecords(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func recordToRow(r *domain.InvoiceRecord) []string {
	row := make([]string, len(columns))
	row[0] = r.InvoiceNumber
	if r.InvoiceDate != nil {
		row[1] = r.InvoiceDate.Format("2006-01-02")
	}
	if r.DueDate != nil {
		row[2] = r.DueDate.Format("2006-01-02")
	}
	row[3] = r.Supplier.Name
	row[4] = r.Supplier.TaxID
	row[5] = r.Client.Name
	row[6] = r.Client.TaxID
	row[7] = r.Subtotal.StringFixed(2)
	row[8] = r.TaxAmount.StringFixed(2)
	row[9] = r.Total.StringFixed(2)
	row[10] = r.Currency
	row[11] = strconv.Itoa(len(r.Lines))
	row[12] = strconv.FormatFloat(r.ConfidenceScore, 'f', 2, 64)
	row[13] = strconv.FormatBool(r.RequiresReview)
	row[14] = string(r.ExtractionMethod)
	if !r.ExtractedAt.IsZero() {
		row[15] = r.ExtractedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return row
}
