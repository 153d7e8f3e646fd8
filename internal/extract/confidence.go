package extract

// Aggregation weights per field family. They sum to 1.0 so the aggregate
// stays in [0,1]; the identity fields and the money fields carry most of
// the weight because an invoice with those wrong is useless regardless of
// how well the rest extracted.
const (
	WeightInvoiceNumber = 0.20
	WeightInvoiceDate   = 0.15
	WeightSupplier      = 0.20
	WeightClient        = 0.15
	WeightTotals        = 0.20
	WeightLineItems     = 0.10
)

// AggregateConfidence folds the per-field confidences into the single
// weighted score the escalation decision runs on. The totals contribution
// is the mean of the three figure confidences; a party that resolved to the
// UNKNOWN sentinel still contributes its floor confidence rather than zero.
func AggregateConfidence(r *FieldResults) float64 {
	totals := (r.Totals.Subtotal.Confidence + r.Totals.Tax.Confidence + r.Totals.Total.Confidence) / 3

	score := WeightInvoiceNumber*r.InvoiceNumber.Confidence +
		WeightInvoiceDate*r.InvoiceDate.Confidence +
		WeightSupplier*r.Supplier.Confidence +
		WeightClient*r.Client.Confidence +
		WeightTotals*totals +
		WeightLineItems*r.Lines.Confidence

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
