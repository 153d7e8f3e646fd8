package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
)

const fullPayload = `{
  "invoice_number": "F2024-00123",
  "invoice_date": "2024-01-15",
  "due_date": null,
  "supplier": {"name": "Consultora Ibérica SL", "tax_id": "b12345678", "address": null, "postal_code": "28001", "city": "Madrid", "email": null, "phone": null},
  "client": {"name": "Acme España SA", "tax_id": "A87654321", "address": null, "postal_code": null, "city": null, "email": null, "phone": null},
  "line_items": [
    {"description": "Consultoría", "quantity": 10, "unit_price": 100, "line_total": 1000, "tax_rate": 21},
    {"description": "Desarrollo", "quantity": 10, "unit_price": 100, "line_total": 1000, "tax_rate": null}
  ],
  "subtotal": 2000,
  "tax_amount": 420,
  "total": 2420,
  "currency": "eur"
}`

func TestDecodeRecord_CompletePayload(t *testing.T) {
	rec, err := DecodeRecord([]byte(fullPayload), 0.7)
	require.NoError(t, err)

	assert.Equal(t, "F2024-00123", rec.InvoiceNumber)
	require.NotNil(t, rec.InvoiceDate)
	assert.Equal(t, "2024-01-15", rec.InvoiceDate.Format("2006-01-02"))
	assert.Nil(t, rec.DueDate)

	assert.Equal(t, "Consultora Ibérica SL", rec.Supplier.Name)
	assert.Equal(t, "B12345678", rec.Supplier.TaxID)
	assert.Equal(t, PartyConfidence, rec.Supplier.Confidence)
	assert.Equal(t, "Acme España SA", rec.Client.Name)

	require.Len(t, rec.Lines, 2)
	assert.Equal(t, LineConfidence, rec.Lines[0].Confidence)
	require.NotNil(t, rec.Lines[0].TaxRate)
	assert.Equal(t, 21.0, *rec.Lines[0].TaxRate)
	assert.Nil(t, rec.Lines[1].TaxRate)

	assert.Equal(t, "2000.00", rec.Subtotal.StringFixed(2))
	assert.Equal(t, "420.00", rec.TaxAmount.StringFixed(2))
	assert.Equal(t, "2420.00", rec.Total.StringFixed(2))
	assert.Equal(t, "EUR", rec.Currency)

	assert.Equal(t, RecordConfidence, rec.ConfidenceScore)
	assert.Equal(t, domain.MethodRemote, rec.ExtractionMethod)
	assert.False(t, rec.RequiresReview)
}

func TestDecodeRecord_MissingTaxIsDerived(t *testing.T) {
	payload := `{
	  "invoice_number": "X-1",
	  "supplier": {"name": "A"}, "client": {"name": "B"},
	  "line_items": [{"description": "Servicio", "quantity": 1, "unit_price": 100, "line_total": 100}],
	  "subtotal": 100, "tax_amount": null, "total": 121
	}`
	rec, err := DecodeRecord([]byte(payload), 0.7)
	require.NoError(t, err)
	assert.Equal(t, "21.00", rec.TaxAmount.StringFixed(2))
}

func TestDecodeRecord_NullPartiesFlagReview(t *testing.T) {
	payload := `{"supplier": null, "client": null, "total": 50, "line_items": [{"description": "x", "quantity": 1, "unit_price": 50, "line_total": 50}]}`
	rec, err := DecodeRecord([]byte(payload), 0.7)
	require.NoError(t, err)

	assert.True(t, rec.Supplier.Unresolved())
	assert.True(t, rec.Client.Unresolved())
	assert.Equal(t, domain.UnknownName, rec.InvoiceNumber)
	assert.True(t, rec.RequiresReview)
}

func TestDecodeRecord_InvalidJSON(t *testing.T) {
	_, err := DecodeRecord([]byte("not json"), 0.7)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestDecodeRecord_BadTaxIDDropped(t *testing.T) {
	payload := `{"supplier": {"name": "A", "tax_id": "nonsense"}, "client": {"name": "B"}, "total": 10, "line_items": [{"description": "x", "quantity": 1, "unit_price": 10, "line_total": 10}]}`
	rec, err := DecodeRecord([]byte(payload), 0.7)
	require.NoError(t, err)
	assert.Empty(t, rec.Supplier.TaxID)
}
