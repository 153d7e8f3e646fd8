// Package extract implements the deterministic, pattern-based field
// extraction engine. Each field family has its own extractor strategy; the
// engine runs them all over parsed document content and assembles an
// invoice record.
package extract

import (
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/domain"
)

// Field names the extractor strategies.
type Field string

const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldInvoiceDate   Field = "invoice_date"
	FieldDueDate       Field = "due_date"
	FieldSupplier      Field = "supplier"
	FieldClient        Field = "client"
	FieldLineItems     Field = "line_items"
	FieldTotals        Field = "totals"
)

// Result is a single extractor outcome: the value, a confidence in [0,1]
// and how the value was obtained. Results are produced once and never
// mutated; a replacement result is a new value.
type Result[T any] struct {
	Value      T
	Confidence float64
	Source     domain.ResultSource
}

// Pattern builds a result for a value matched directly in the document.
func Pattern[T any](value T, confidence float64) Result[T] {
	return Result[T]{Value: value, Confidence: confidence, Source: domain.SourcePattern}
}

// Inferred builds a result for a value derived from other fields.
func Inferred[T any](value T, confidence float64) Result[T] {
	return Result[T]{Value: value, Confidence: confidence, Source: domain.SourceInference}
}

// Unresolved builds a zero-confidence sentinel result.
func Unresolved[T any](sentinel T) Result[T] {
	return Result[T]{Value: sentinel, Confidence: 0, Source: domain.SourceDefault}
}

// TotalsResult carries the three financial figures extracted by the totals
// strategy before cross-validation.
type TotalsResult struct {
	Subtotal Result[decimal.Decimal]
	Tax      Result[decimal.Decimal]
	Total    Result[decimal.Decimal]
}

// FieldResults collects every strategy's output for one document. Slots
// start as unresolved sentinels so a failing extractor degrades to "field
// unresolved" instead of aborting the run.
type FieldResults struct {
	InvoiceNumber Result[string]
	InvoiceDate   Result[*time.Time]
	DueDate       Result[*time.Time]
	Supplier      Result[domain.CompanyInfo]
	Client        Result[domain.CompanyInfo]
	Lines         Result[[]domain.InvoiceLine]
	Totals        TotalsResult
}

// NewFieldResults returns a result set pre-filled with unresolved
// sentinels.
func NewFieldResults() *FieldResults {
	return &FieldResults{
		InvoiceNumber: Unresolved(domain.UnknownName),
		InvoiceDate:   Unresolved[*time.Time](nil),
		DueDate:       Unresolved[*time.Time](nil),
		Supplier:      Unresolved(domain.NewCompanyInfo(domain.UnknownName, 0)),
		Client:        Unresolved(domain.NewCompanyInfo(domain.UnknownName, 0)),
		Lines:         Unresolved[[]domain.InvoiceLine](nil),
		Totals: TotalsResult{
			Subtotal: Unresolved(decimal.Zero),
			Tax:      Unresolved(decimal.Zero),
			Total:    Unresolved(decimal.Zero),
		},
	}
}

// Extractor is one swappable field-family strategy. Implementations are
// pure functions over the document content and write their outcome into the
// shared result set.
type Extractor interface {
	Field() Field
	Apply(doc *domain.DocumentContent, out *FieldResults)
}
