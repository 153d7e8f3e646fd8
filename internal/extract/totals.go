package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"facturo/internal/domain"
	"facturo/internal/numeric"
)

// totalsWindow is how many characters after a totals label are scanned for
// an amount.
const totalsWindow = 50

// Totals confidences: matched next to a label, derived from the other two
// figures, or inferred assuming the standard tax rate.
const (
	totalsPatternConfidence = 0.85
	totalsDerivedConfidence = 0.7
	totalsTaxRateConfidence = 0.5
)

// DefaultTaxRate is the standard Spanish IVA rate (percent), assumed when
// only the grand total is stated. Deployments can override it through the
// extraction config.
const DefaultTaxRate = 21.0

var (
	subtotalLabel = regexp.MustCompile(`(?i)(?:base\s+imponible|subtotal|base)\b`)
	taxLabel      = regexp.MustCompile(`(?i)(?:I\.?V\.?A\.?|impuestos?|tax)\b(?:\s*\(?\d{1,2}(?:[.,]\d+)?\s*%\)?)?`)
	totalLabel    = regexp.MustCompile(`(?i)(?:total\s+(?:factura|a\s+pagar)|importe\s+total|\btotal)\b`)
)

var amountPattern = regexp.MustCompile(`[\d.,]+\s*(?:€|EUR)?`)

// TotalsExtractor locates the subtotal, tax and grand total near their
// label keywords and derives whichever figure the document left out.
type TotalsExtractor struct {
	taxRate float64
}

// NewTotalsExtractor builds the totals strategy. taxRate is the percent
// rate assumed when only the grand total is stated; zero or negative means
// DefaultTaxRate.
func NewTotalsExtractor(taxRate float64) Extractor {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &TotalsExtractor{taxRate: taxRate}
}

func (e *TotalsExtractor) Field() Field { return FieldTotals }

func (e *TotalsExtractor) Apply(doc *domain.DocumentContent, out *FieldResults) {
	content := doc.Body()

	// Word boundaries in the label patterns keep "total" from matching
	// inside "subtotal".
	out.Totals = deriveTotals(
		findAmount(content, subtotalLabel),
		findAmount(content, taxLabel),
		findAmount(content, totalLabel),
		e.taxRate,
	)
}

// findAmount scans the window after each label occurrence for the first
// parseable amount, preferring the largest match when a label appears more
// than once (a totals block usually restates earlier figures).
func findAmount(content string, label *regexp.Regexp) Result[decimal.Decimal] {
	best := Unresolved(decimal.Zero)
	for _, loc := range label.FindAllStringIndex(content, -1) {
		end := loc[1] + totalsWindow
		if end > len(content) {
			end = len(content)
		}
		for _, m := range amountPattern.FindAllString(content[loc[1]:end], -1) {
			if v, ok := numeric.ParseAmount(m); ok && v.IsPositive() {
				if best.Source == domain.SourceDefault || v.GreaterThan(best.Value) {
					best = Pattern(v, totalsPatternConfidence)
				}
				break
			}
		}
	}
	return best
}

// deriveTotals fills in whichever of the three figures is missing. With two
// figures present the third follows arithmetically; with only the grand
// total present, the subtotal and tax are inferred at the given percent
// rate.
func deriveTotals(subtotal, tax, total Result[decimal.Decimal], taxRate float64) TotalsResult {
	haveSub := subtotal.Source != domain.SourceDefault
	haveTax := tax.Source != domain.SourceDefault
	haveTotal := total.Source != domain.SourceDefault

	switch {
	case haveSub && haveTax && !haveTotal:
		total = Inferred(subtotal.Value.Add(tax.Value), totalsDerivedConfidence)
	case haveSub && haveTotal && !haveTax:
		tax = Inferred(total.Value.Sub(subtotal.Value), totalsDerivedConfidence)
	case haveTax && haveTotal && !haveSub:
		subtotal = Inferred(total.Value.Sub(tax.Value), totalsDerivedConfidence)
	case haveTotal && !haveSub && !haveTax:
		rate := decimal.NewFromFloat(100 + taxRate).Div(decimal.NewFromInt(100))
		sub := total.Value.Div(rate).RoundBank(2)
		subtotal = Inferred(sub, totalsTaxRateConfidence)
		tax = Inferred(total.Value.Sub(sub), totalsTaxRateConfidence)
	}

	return TotalsResult{Subtotal: subtotal, Tax: tax, Total: total}
}
