package extract

import (
	"regexp"

	"facturo/internal/domain"
)

// numberPattern pairs a compiled pattern with its fixed confidence.
// Label-anchored patterns score higher than table-adjacency ones and are
// tried first; the first accepted match wins.
type numberPattern struct {
	re         *regexp.Regexp
	confidence float64
}

var invoiceNumberPatterns = []numberPattern{
	// Explicit label: "Factura Nº: F2024-00123", "Invoice No: INV-42".
	{regexp.MustCompile(`(?i)(?:Factura|Invoice)\s*(?:N[ºo°]|No\.?|Num\.?|#)\s*[:\-]?\s*([A-Z0-9][\w\-/]+)`), 0.95},
	// Inverted label: "Nº de Factura: F2024-00123".
	{regexp.MustCompile(`(?i)N[ºo°]?\s*de\s+(?:Factura|Invoice)\s*[:\-]?\s*([A-Z0-9][\w\-/]+)`), 0.95},
	// Bare label: "Factura F2024-00123".
	{regexp.MustCompile(`(?i)(?:Factura|Invoice)\s+([A-Z0-9][\w\-/]+)`), 0.9},
	{regexp.MustCompile(`(?i)(?:Número|Number)\s*[:\-]?\s*([A-Z0-9][\w\-/]+)`), 0.85},
	// Markdown table cell adjacency: "| Factura | F2024-00123 |".
	{regexp.MustCompile(`(?i)\|\s*(?:Factura|Invoice|Número)\s*\|\s*([A-Z0-9][\w\-/]+)\s*\|`), 0.9},
}

var hasDigit = regexp.MustCompile(`\d`)

// InvoiceNumberExtractor resolves the document's reference number.
type InvoiceNumberExtractor struct{}

func NewInvoiceNumberExtractor() Extractor { return InvoiceNumberExtractor{} }

func (InvoiceNumberExtractor) Field() Field { return FieldInvoiceNumber }

func (InvoiceNumberExtractor) Apply(doc *domain.DocumentContent, out *FieldResults) {
	content := doc.Body()
	for _, p := range invoiceNumberPatterns {
		m := p.re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		candidate := m[1]
		// Accept only plausible references: at least one digit, length ≥ 3.
		if len(candidate) >= 3 && hasDigit.MatchString(candidate) {
			out.InvoiceNumber = Pattern(candidate, p.confidence)
			return
		}
	}
	out.InvoiceNumber = Unresolved(domain.UnknownName)
}
