package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"facturo/internal/domain"
	"facturo/internal/export"
)

func sampleRecords() []domain.InvoiceRecord {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rate := 21.0
	return []domain.InvoiceRecord{{
		InvoiceNumber: "F2024-00123",
		InvoiceDate:   &date,
		Supplier:      domain.CompanyInfo{Name: "Consultora Ibérica SL", TaxID: "B12345678"},
		Client:        domain.CompanyInfo{Name: "Acme España SA", TaxID: "A87654321"},
		Lines: []domain.InvoiceLine{
			{Description: "Consultoría", Quantity: 10, UnitPrice: decimal.NewFromInt(100), LineTotal: decimal.NewFromInt(1000), TaxRate: &rate, Confidence: 0.8},
		},
		Subtotal:         decimal.NewFromInt(1000),
		TaxAmount:        decimal.NewFromInt(210),
		Total:            decimal.NewFromInt(1210),
		Currency:         "EUR",
		ConfidenceScore:  0.87,
		ExtractionMethod: domain.MethodLocal,
		ExtractedAt:      date,
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleRecords()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, export.BOM))

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, export.BOM)))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "F2024-00123", rows[1][0])
	assert.Equal(t, "2024-01-15", rows[1][1])
	assert.Equal(t, "1210.00", rows[1][9])
	assert.Equal(t, "1", rows[1][11])
	assert.Equal(t, "local", rows[1][14])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "F2024-00123", rows[1][0])

	lines, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Consultoría", lines[1][1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, sampleRecords()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "F2024-00123", decoded[0]["invoice_number"])
	assert.True(t, strings.Contains(buf.String(), "supplier"))
}
