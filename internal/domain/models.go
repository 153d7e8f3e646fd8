package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownName is the sentinel for an unresolved company name or invoice
// number. Fields carrying it are never empty strings.
const UnknownName = "UNKNOWN"

// TotalsTolerance is the maximum accepted difference, in currency units,
// between total and subtotal+tax before a record is flagged for review.
var TotalsTolerance = decimal.NewFromFloat(0.02)

// reviewConfidenceCap is applied when the totals arithmetic is inconsistent.
var reviewConfidenceCap = 0.7

// CompanyInfo holds supplier or client identity data. TaxID, when set, has
// already passed taxid.Valid; otherwise it is empty.
type CompanyInfo struct {
	Name       string  `json:"name"`
	TaxID      string  `json:"tax_id,omitempty"`
	Address    string  `json:"address,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	City       string  `json:"city,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Confidence float64 `json:"confidence"`
}

// NewCompanyInfo cleans the extracted name (collapsing whitespace, limiting
// length) and substitutes the UNKNOWN sentinel when nothing was resolved.
func NewCompanyInfo(name string, confidence float64) CompanyInfo {
	cleaned := strings.Join(strings.Fields(name), " ")
	if cleaned == "" {
		cleaned = UnknownName
	}
	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	return CompanyInfo{Name: cleaned, Confidence: confidence}
}

// Unresolved reports whether the company could not be identified.
func (c CompanyInfo) Unresolved() bool {
	return c.Name == "" || c.Name == UnknownName
}

// InvoiceLine is a single line item. LineTotal is derived from
// quantity × unit price when the document did not state it.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxRate     *float64        `json:"tax_rate,omitempty"`
	Confidence  float64         `json:"confidence"`
}

// NewInvoiceLine constructs a line item, enforcing quantity > 0 and deriving
// the missing line total.
func NewInvoiceLine(description string, quantity float64, unitPrice, lineTotal decimal.Decimal, confidence float64) InvoiceLine {
	if description == "" {
		description = "Item"
	}
	if quantity <= 0 {
		quantity = 1.0
	}
	if lineTotal.IsZero() && unitPrice.IsPositive() {
		lineTotal = decimal.NewFromFloat(quantity).Mul(unitPrice)
	}
	return InvoiceLine{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   lineTotal,
		Confidence:  confidence,
	}
}

// InvoiceRecord is the terminal output of the extraction pipeline. It is
// constructed once by either the local engine or the remote backend and
// never mutated afterwards; the orchestrator only chooses between two
// candidate records.
type InvoiceRecord struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	Supplier CompanyInfo `json:"supplier"`
	Client   CompanyInfo `json:"client"`

	Lines []InvoiceLine `json:"lines"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`

	ConfidenceScore  float64          `json:"confidence_score"`
	RequiresReview   bool             `json:"requires_review"`
	ExtractionMethod ExtractionMethod `json:"extraction_method"`
	ExtractedAt      time.Time        `json:"extracted_at"`
}

// Finalize applies the record-level invariants as the last step of
// construction. reviewThreshold is the confidence below which manual review
// is always required (0.7 by default).
func (r *InvoiceRecord) Finalize(reviewThreshold float64) {
	if r.InvoiceNumber == "" {
		r.InvoiceNumber = UnknownName
	}
	if r.Currency == "" {
		r.Currency = "EUR"
	}
	if r.ExtractedAt.IsZero() {
		r.ExtractedAt = time.Now().UTC()
	}

	// Totals arithmetic: inconsistency caps confidence and forces review.
	if r.Total.IsPositive() {
		diff := r.Total.Sub(r.Subtotal.Add(r.TaxAmount)).Abs()
		if diff.GreaterThan(TotalsTolerance) {
			r.RequiresReview = true
			if r.ConfidenceScore > reviewConfidenceCap {
				r.ConfidenceScore = reviewConfidenceCap
			}
		}
	}

	switch {
	case r.ConfidenceScore < reviewThreshold:
		r.RequiresReview = true
	case r.InvoiceNumber == UnknownName:
		r.RequiresReview = true
	case r.Supplier.Unresolved() && r.Client.Unresolved():
		r.RequiresReview = true
	case !r.Total.IsPositive():
		r.RequiresReview = true
	case !r.hasConfidentLine():
		r.RequiresReview = true
	case r.hasExcessPrecision():
		r.RequiresReview = true
	}
}

func (r *InvoiceRecord) hasConfidentLine() bool {
	for i := range r.Lines {
		if r.Lines[i].Confidence > 0.5 {
			return true
		}
	}
	return false
}

// hasExcessPrecision reports whether any monetary field carries more than
// two decimal digits, a symptom of upstream parsing corruption.
func (r *InvoiceRecord) hasExcessPrecision() bool {
	amounts := []decimal.Decimal{r.Subtotal, r.TaxAmount, r.Total}
	for i := range r.Lines {
		amounts = append(amounts, r.Lines[i].UnitPrice, r.Lines[i].LineTotal)
	}
	for _, a := range amounts {
		if !a.Equal(a.Round(2)) {
			return true
		}
	}
	return false
}

// Table is one table detected by the document-parsing backend.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	RawText string     `json:"raw_text"`
}

// DocumentContent is the structured output of the document-parsing backend.
type DocumentContent struct {
	Text     string         `json:"text"`
	Markdown string         `json:"markdown"`
	Tables   []Table        `json:"tables"`
	Metadata map[string]any `json:"metadata"`
}

// Body returns the preferred content for pattern matching: markdown carries
// better structure than plain text when both are available.
func (d *DocumentContent) Body() string {
	if d.Markdown != "" {
		return d.Markdown
	}
	return d.Text
}

// Empty reports whether the parsing backend produced no usable content.
func (d *DocumentContent) Empty() bool {
	return d.Text == "" && d.Markdown == "" && len(d.Tables) == 0
}

// Job tracks one uploaded document through the pipeline.
type Job struct {
	ID        uuid.UUID        `json:"invoice_id"`
	FileName  string           `json:"filename"`
	Status    JobStatus        `json:"status"`
	Progress  float64          `json:"progress"`
	Message   string           `json:"message,omitempty"`
	Result    *InvoiceRecord   `json:"data,omitempty"`
	Method    ExtractionMethod `json:"extraction_method,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Where the uploaded bytes live until processing. Not part of the API
	// payload.
	StorageKey  string `json:"-"`
	ContentType string `json:"-"`
	FileSize    int64  `json:"-"`
}
