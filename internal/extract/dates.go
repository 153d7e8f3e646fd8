package extract

import (
	"regexp"
	"time"

	"facturo/internal/domain"
	"facturo/internal/numeric"
)

// dateWindow is how many characters after a label keyword are scanned for a
// date before falling back to a document-wide search.
const dateWindow = 20

// unanchoredFactor scales the pattern confidence when a date is found by
// document-wide search instead of next to its label.
const unanchoredFactor = 0.75

type datePattern struct {
	re         *regexp.Regexp
	confidence float64
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`), 0.95},
	{regexp.MustCompile(`\d{1,2}[-/.]\d{1,2}[-/.]\d{4}`), 0.9},
	{regexp.MustCompile(`(?i)\d{1,2}\s+de\s+[a-záéíóúñ]+\s+de\s+\d{4}`), 0.95},
}

var (
	invoiceDateLabel = regexp.MustCompile(`(?i)fecha(?:\s+de\s+(?:emisión|factura))?[^:\n]{0,12}[:\s]`)
	dueDateLabel     = regexp.MustCompile(`(?i)(?:vencimiento|fecha\s+l[ií]mite|due\s+date)[^:\n]{0,12}[:\s]`)
)

// findDate scans text for the first parseable date, trying the patterns in
// order.
func findDate(text string) (time.Time, float64, bool) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			if d, ok := numeric.ParseDate(m); ok {
				return d, p.confidence, true
			}
		}
	}
	return time.Time{}, 0, false
}

// dateExtractor resolves a labelled date field. The window after the
// nearest label is searched first; wideFallback additionally allows a
// document-wide search at reduced confidence when no label is present at
// all. The invoice date tolerates a wide search since any date in the
// document is a reasonable candidate; the due date does not, because it
// would usually pick up the issue date instead.
type dateExtractor struct {
	field        Field
	label        *regexp.Regexp
	wideFallback bool
}

// NewInvoiceDateExtractor resolves the issue date.
func NewInvoiceDateExtractor() Extractor {
	return &dateExtractor{field: FieldInvoiceDate, label: invoiceDateLabel, wideFallback: true}
}

// NewDueDateExtractor resolves the payment due date.
func NewDueDateExtractor() Extractor {
	return &dateExtractor{field: FieldDueDate, label: dueDateLabel}
}

func (e *dateExtractor) Field() Field { return e.field }

func (e *dateExtractor) Apply(doc *domain.DocumentContent, out *FieldResults) {
	res := e.extract(doc.Body())
	switch e.field {
	case FieldDueDate:
		out.DueDate = res
	default:
		out.InvoiceDate = res
	}
}

func (e *dateExtractor) extract(content string) Result[*time.Time] {
	labelled := false
	for _, loc := range e.label.FindAllStringIndex(content, -1) {
		labelled = true
		end := loc[1] + dateWindow
		if end > len(content) {
			end = len(content)
		}
		if d, conf, ok := findDate(content[loc[1]:end]); ok {
			return Pattern(&d, conf)
		}
	}

	// Label present but no date inside its window, or no label at all for
	// fields that tolerate a wide search: scan the whole document.
	if labelled || e.wideFallback {
		if d, conf, ok := findDate(content); ok {
			return Pattern(&d, conf*unanchoredFactor)
		}
	}

	return Unresolved[*time.Time](nil)
}
