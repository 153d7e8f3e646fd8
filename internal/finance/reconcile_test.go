package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"facturo/internal/finance"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestReconcile_ConsistentUnchanged(t *testing.T) {
	sub, tax, total := finance.Reconcile(dec("2000.00"), dec("420.00"), dec("2420.00"))
	assert.True(t, sub.Equal(dec("2000.00")))
	assert.True(t, tax.Equal(dec("420.00")))
	assert.True(t, total.Equal(dec("2420.00")))
}

func TestReconcile_DerivesMissing(t *testing.T) {
	t.Run("missing_tax", func(t *testing.T) {
		_, tax, _ := finance.Reconcile(dec("2000.00"), decimal.Zero, dec("2420.00"))
		assert.True(t, tax.Equal(dec("420.00")))
	})
	t.Run("missing_subtotal", func(t *testing.T) {
		sub, _, _ := finance.Reconcile(decimal.Zero, dec("420.00"), dec("2420.00"))
		assert.True(t, sub.Equal(dec("2000.00")))
	})
	t.Run("missing_total", func(t *testing.T) {
		_, _, total := finance.Reconcile(dec("2000.00"), dec("420.00"), decimal.Zero)
		assert.True(t, total.Equal(dec("2420.00")))
	})
}

func TestReconcile_InconsistentRecomputesTax(t *testing.T) {
	// Extracted tax claims 500 but total and subtotal say 420.
	sub, tax, total := finance.Reconcile(dec("2000.00"), dec("500.00"), dec("2420.00"))
	assert.True(t, sub.Equal(dec("2000.00")))
	assert.True(t, tax.Equal(dec("420.00")))
	assert.True(t, total.Equal(dec("2420.00")))
}

func TestReconcile_WithinTolerance(t *testing.T) {
	// One-cent drift is accepted as-is.
	_, tax, _ := finance.Reconcile(dec("2000.00"), dec("419.99"), dec("2420.00"))
	assert.True(t, tax.Equal(dec("419.99")))
}

func TestReconcile_BankersRounding(t *testing.T) {
	// Half-to-even at two decimals, applied only at the end.
	sub, _, _ := finance.Reconcile(dec("10.125"), dec("2.125"), decimal.Zero)
	assert.Equal(t, "10.12", sub.StringFixed(2))

	_, tax, _ := finance.Reconcile(dec("10.135"), dec("2.135"), decimal.Zero)
	assert.Equal(t, "2.14", tax.StringFixed(2))
}

func TestReconcile_AllMissing(t *testing.T) {
	sub, tax, total := finance.Reconcile(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, sub.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())
}
