// Package finance cross-validates the subtotal/tax/total arithmetic of an
// extracted invoice and repairs missing figures by inference.
package finance

import "github.com/shopspring/decimal"

// Tolerance is the accepted arithmetic drift between total and
// subtotal+tax, in currency units.
var Tolerance = decimal.NewFromFloat(0.02)

// Reconcile checks subtotal + tax = total and repairs missing values. A zero
// value means "missing". When exactly two of the three figures are known the
// third is derived; when all three are present but inconsistent beyond the
// tolerance, tax is recomputed as total − subtotal (tax labels are more
// ambiguous in source documents, so total and subtotal are trusted).
// Intermediate arithmetic is unrounded; the returned figures are rounded to
// two decimals with banker's rounding as the final step.
func Reconcile(subtotal, tax, total decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	haveSub := subtotal.IsPositive()
	haveTax := tax.IsPositive()
	haveTotal := total.IsPositive()

	switch {
	case haveTotal && haveSub && !haveTax:
		tax = total.Sub(subtotal)
	case haveTotal && !haveSub && haveTax:
		subtotal = total.Sub(tax)
	case !haveTotal && haveSub && haveTax:
		total = subtotal.Add(tax)
	case haveTotal && haveSub && haveTax:
		diff := total.Sub(subtotal.Add(tax)).Abs()
		if diff.GreaterThan(Tolerance) {
			tax = total.Sub(subtotal)
		}
	}

	return subtotal.RoundBank(2), tax.RoundBank(2), total.RoundBank(2)
}
