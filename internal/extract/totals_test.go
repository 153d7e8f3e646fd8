package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"facturo/internal/domain"
)

func TestTotals_AllThreeLabelled(t *testing.T) {
	text := "Base Imponible: 2.000,00 €\nIVA (21%): 420,00 €\nTOTAL: 2.420,00 €"
	out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), text)

	assert.Equal(t, "2000.00", out.Totals.Subtotal.Value.StringFixed(2))
	assert.Equal(t, "420.00", out.Totals.Tax.Value.StringFixed(2))
	assert.Equal(t, "2420.00", out.Totals.Total.Value.StringFixed(2))
	assert.Equal(t, totalsPatternConfidence, out.Totals.Total.Confidence)
	assert.Equal(t, domain.SourcePattern, out.Totals.Subtotal.Source)
}

func TestTotals_TotalKeywordDoesNotMatchSubtotal(t *testing.T) {
	out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "Subtotal: 100,00\nTotal: 121,00")

	assert.Equal(t, "100.00", out.Totals.Subtotal.Value.StringFixed(2))
	assert.Equal(t, "121.00", out.Totals.Total.Value.StringFixed(2))
}

func TestTotals_DerivesMissingFigure(t *testing.T) {
	t.Run("missing_tax", func(t *testing.T) {
		out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "Base Imponible: 100,00\nTotal: 121,00")
		assert.Equal(t, "21.00", out.Totals.Tax.Value.StringFixed(2))
		assert.Equal(t, totalsDerivedConfidence, out.Totals.Tax.Confidence)
		assert.Equal(t, domain.SourceInference, out.Totals.Tax.Source)
	})

	t.Run("missing_total", func(t *testing.T) {
		out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "Base Imponible: 100,00\nIVA: 21,00")
		assert.Equal(t, "121.00", out.Totals.Total.Value.StringFixed(2))
		assert.Equal(t, domain.SourceInference, out.Totals.Total.Source)
	})

	t.Run("missing_subtotal", func(t *testing.T) {
		out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "IVA: 21,00\nTotal a pagar: 121,00")
		assert.Equal(t, "100.00", out.Totals.Subtotal.Value.StringFixed(2))
		assert.Equal(t, domain.SourceInference, out.Totals.Subtotal.Source)
	})
}

func TestTotals_InfersFromGrandTotalAtStandardRate(t *testing.T) {
	out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "Importe total: 121,00 €")

	assert.Equal(t, "100.00", out.Totals.Subtotal.Value.StringFixed(2))
	assert.Equal(t, "21.00", out.Totals.Tax.Value.StringFixed(2))
	assert.Equal(t, totalsTaxRateConfidence, out.Totals.Subtotal.Confidence)
	assert.Equal(t, totalsTaxRateConfidence, out.Totals.Tax.Confidence)
	assert.Equal(t, totalsPatternConfidence, out.Totals.Total.Confidence)
}

func TestTotals_InfersAtConfiguredRate(t *testing.T) {
	out := applyToText(t, NewTotalsExtractor(10), "Importe total: 110,00 €")

	assert.Equal(t, "100.00", out.Totals.Subtotal.Value.StringFixed(2))
	assert.Equal(t, "10.00", out.Totals.Tax.Value.StringFixed(2))
}

func TestTotals_ZeroRateFallsBackToDefault(t *testing.T) {
	out := applyToText(t, NewTotalsExtractor(0), "Importe total: 121,00 €")

	assert.Equal(t, "100.00", out.Totals.Subtotal.Value.StringFixed(2))
	assert.Equal(t, "21.00", out.Totals.Tax.Value.StringFixed(2))
}

func TestTotals_NothingFound(t *testing.T) {
	out := applyToText(t, NewTotalsExtractor(DefaultTaxRate), "Documento sin importes")

	assert.True(t, out.Totals.Total.Value.IsZero())
	assert.Equal(t, domain.SourceDefault, out.Totals.Total.Source)
	assert.Zero(t, out.Totals.Total.Confidence)
}
