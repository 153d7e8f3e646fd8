package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"facturo/internal/domain"
)

func applyToText(t *testing.T, ex Extractor, text string) *FieldResults {
	t.Helper()
	out := NewFieldResults()
	ex.Apply(&domain.DocumentContent{Text: text}, out)
	return out
}

func TestInvoiceNumber_LabelledForms(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		want       string
		confidence float64
	}{
		{"spanish_label", "Factura Nº: F2024-00123\nFecha: 15/01/2024", "F2024-00123", 0.95},
		{"english_label", "Invoice No: INV-42X", "INV-42X", 0.95},
		{"inverted_label", "Nº de Factura: 2024/0042", "2024/0042", 0.95},
		{"bare_label", "Factura A-100 emitida en Madrid", "A-100", 0.9},
		{"numero_label", "Número: FC-2024-7", "FC-2024-7", 0.85},
		{"table_cell", "| Factura | F-001122 |\n| Fecha | 01/02/2024 |", "F-001122", 0.9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := applyToText(t, NewInvoiceNumberExtractor(), tc.text)
			assert.Equal(t, tc.want, out.InvoiceNumber.Value)
			assert.Equal(t, tc.confidence, out.InvoiceNumber.Confidence)
			assert.Equal(t, domain.SourcePattern, out.InvoiceNumber.Source)
		})
	}
}

func TestInvoiceNumber_Unresolved(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no_label", "Presupuesto de obra para cliente"},
		{"no_digits", "Factura ABC sin número"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := applyToText(t, NewInvoiceNumberExtractor(), tc.text)
			assert.Equal(t, domain.UnknownName, out.InvoiceNumber.Value)
			assert.Zero(t, out.InvoiceNumber.Confidence)
			assert.Equal(t, domain.SourceDefault, out.InvoiceNumber.Source)
		})
	}
}
