package extract

import (
	"log"

	"facturo/internal/domain"
	"facturo/internal/finance"
)

// placeholderConfidence is given to the synthetic line injected when the
// document stated totals but no recognizable line items. It sits below the
// review threshold on purpose so such records are always flagged.
const placeholderConfidence = 0.3

// placeholderDescription labels the synthetic line.
const placeholderDescription = "Servicio/Producto"

// Engine runs the extractor strategies over parsed document content and
// assembles an invoice record.
type Engine struct {
	extractors      []Extractor
	reviewThreshold float64
}

// NewEngine builds an engine with the full strategy set. reviewThreshold is
// the aggregate confidence below which a record is flagged for review;
// taxRate is the percent rate assumed when only a grand total is found.
func NewEngine(reviewThreshold, taxRate float64) *Engine {
	return &Engine{
		extractors: []Extractor{
			NewInvoiceNumberExtractor(),
			NewInvoiceDateExtractor(),
			NewDueDateExtractor(),
			NewSupplierExtractor(),
			NewClientExtractor(),
			NewLineItemExtractor(),
			NewTotalsExtractor(taxRate),
		},
		reviewThreshold: reviewThreshold,
	}
}

// Extract runs every strategy and folds the results into a finalized
// record. A panicking strategy is contained: its field stays at the
// unresolved sentinel and the remaining strategies still run.
func (e *Engine) Extract(doc *domain.DocumentContent) *domain.InvoiceRecord {
	results := NewFieldResults()
	for _, ex := range e.extractors {
		e.applySafely(ex, doc, results)
	}
	return e.assemble(results)
}

func (e *Engine) applySafely(ex Extractor, doc *domain.DocumentContent, out *FieldResults) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extract] strategy %s panicked, field left unresolved: %v", ex.Field(), r)
		}
	}()
	ex.Apply(doc, out)
}

func (e *Engine) assemble(r *FieldResults) *domain.InvoiceRecord {
	subtotal, tax, total := finance.Reconcile(
		r.Totals.Subtotal.Value,
		r.Totals.Tax.Value,
		r.Totals.Total.Value,
	)

	lines := r.Lines.Value
	if len(lines) == 0 {
		// No recognizable line items: stand in a single synthetic line so
		// the record never has zero rows. It carries the subtotal when one
		// was found and zero amounts otherwise.
		lines = []domain.InvoiceLine{
			domain.NewInvoiceLine(placeholderDescription, 1, subtotal, subtotal, placeholderConfidence),
		}
		r.Lines = Inferred(lines, placeholderConfidence)
	}

	rec := &domain.InvoiceRecord{
		InvoiceNumber:    r.InvoiceNumber.Value,
		InvoiceDate:      r.InvoiceDate.Value,
		DueDate:          r.DueDate.Value,
		Supplier:         r.Supplier.Value,
		Client:           r.Client.Value,
		Lines:            lines,
		Subtotal:         subtotal,
		TaxAmount:        tax,
		Total:            total,
		ConfidenceScore:  AggregateConfidence(r),
		ExtractionMethod: domain.MethodLocal,
	}
	rec.Finalize(e.reviewThreshold)
	return rec
}
