package remote

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/domain"
	"facturo/internal/finance"
	"facturo/internal/taxid"
)

// Confidences assigned to remote results. The remote backend reads the
// whole document at once, so its output is trusted more than pattern
// matching but never fully.
const (
	RecordConfidence = 0.92
	PartyConfidence  = 0.95
	LineConfidence   = 0.9
)

type wireCompany struct {
	Name       *string `json:"name"`
	TaxID      *string `json:"tax_id"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postal_code"`
	City       *string `json:"city"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
}

type wireLine struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
	TaxRate     *float64 `json:"tax_rate"`
}

type wireInvoice struct {
	InvoiceNumber *string      `json:"invoice_number"`
	InvoiceDate   *string      `json:"invoice_date"`
	DueDate       *string      `json:"due_date"`
	Supplier      *wireCompany `json:"supplier"`
	Client        *wireCompany `json:"client"`
	LineItems     []wireLine   `json:"line_items"`
	Subtotal      *float64     `json:"subtotal"`
	TaxAmount     *float64     `json:"tax_amount"`
	Total         *float64     `json:"total"`
	Currency      *string      `json:"currency"`
}

// DecodeRecord turns a validated remote JSON payload into a finalized
// invoice record. reviewThreshold is passed through to record
// finalization.
func DecodeRecord(raw []byte, reviewThreshold float64) (*domain.InvoiceRecord, error) {
	var wire wireInvoice
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("decode invoice payload: %v", err),
			Raw:    truncate(string(raw), 500),
		}
	}

	rec := &domain.InvoiceRecord{
		InvoiceNumber:    strOr(wire.InvoiceNumber, domain.UnknownName),
		InvoiceDate:      parseWireDate(wire.InvoiceDate),
		DueDate:          parseWireDate(wire.DueDate),
		Supplier:         mapCompany(wire.Supplier),
		Client:           mapCompany(wire.Client),
		Currency:         strings.ToUpper(strOr(wire.Currency, "EUR")),
		ConfidenceScore:  RecordConfidence,
		ExtractionMethod: domain.MethodRemote,
	}

	for _, l := range wire.LineItems {
		rec.Lines = append(rec.Lines, domain.NewInvoiceLine(
			strOr(l.Description, ""),
			floatOr(l.Quantity, 1),
			decOr(l.UnitPrice),
			decOr(l.LineTotal),
			LineConfidence,
		))
		if l.TaxRate != nil {
			rec.Lines[len(rec.Lines)-1].TaxRate = l.TaxRate
		}
	}

	rec.Subtotal, rec.TaxAmount, rec.Total = finance.Reconcile(
		decOr(wire.Subtotal), decOr(wire.TaxAmount), decOr(wire.Total),
	)

	rec.Finalize(reviewThreshold)
	return rec, nil
}

func mapCompany(w *wireCompany) domain.CompanyInfo {
	if w == nil {
		return domain.NewCompanyInfo("", 0)
	}
	info := domain.NewCompanyInfo(strOr(w.Name, ""), PartyConfidence)
	if info.Unresolved() {
		info.Confidence = 0
	}
	if w.TaxID != nil {
		if id, ok := taxid.Normalize(*w.TaxID); ok && taxid.Valid(id) {
			info.TaxID = id
		}
	}
	info.Address = strOr(w.Address, "")
	info.PostalCode = strOr(w.PostalCode, "")
	info.City = strOr(w.City, "")
	info.Email = strOr(w.Email, "")
	info.Phone = strOr(w.Phone, "")
	return info
}

func parseWireDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &d
}

func strOr(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return strings.TrimSpace(*s)
}

func floatOr(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

func decOr(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}
