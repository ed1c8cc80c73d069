package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPriceSet, true},
		{OrderPending, OrderConfirmed, true},
		{OrderDraft, OrderPriceSet, true},
		{OrderPriceSet, OrderConfirmed, true},
		{OrderConfirmed, OrderShipped, true},
		{OrderShipped, OrderCompleted, true},
		{OrderShipped, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPriceSet, OrderDraft, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderStatus("BOGUS"), OrderPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestProductStatus_CanTransition(t *testing.T) {
	t.Parallel()

	assert.True(t, ProductPending.CanTransition(ProductApproved))
	assert.True(t, ProductPending.CanTransition(ProductRejected))
	assert.True(t, ProductApproved.CanTransition(ProductPending))
	assert.False(t, ProductApproved.CanTransition(ProductApproved))
	assert.False(t, ProductRejected.CanTransition(ProductApproved))
	assert.False(t, ProductRejected.CanTransition(ProductPending))
}

func TestShipmentStatus_CanTransition(t *testing.T) {
	t.Parallel()

	assert.True(t, ShipmentPending.CanTransition(ShipmentInTransit))
	assert.True(t, ShipmentInTransit.CanTransition(ShipmentDelivered))
	assert.False(t, ShipmentPending.CanTransition(ShipmentDelivered))
	assert.False(t, ShipmentDelivered.CanTransition(ShipmentInTransit))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_PerCurrencyWithoutConversion(t *testing.T) {
	t.Parallel()

	o := &Order{
		PriceMode: PriceEstimate,
		Items: []OrderItem{
			{Quantity: 3, EstimateCurrency: "USD", Currency: "USD", UnitPriceEstimate: d("10")},
			{Quantity: 2, EstimateCurrency: "IDR", Currency: "IDR", UnitPriceEstimate: d("100000")},
			{Quantity: 1, EstimateCurrency: "USD", Currency: "USD", UnitPriceEstimate: d("2.5")},
		},
	}
	totals := o.ComputeTotals()
	if assert.Len(t, totals, 2) {
		assert.Equal(t, "IDR", totals[0].Currency)
		assert.True(t, totals[0].Amount.Equal(d("200000")))
		assert.Equal(t, "USD", totals[1].Currency)
		assert.True(t, totals[1].Amount.Equal(d("32.5")))
	}
}

func TestComputeTotals_FixedModeUsesFixedPriceWhenSet(t *testing.T) {
	t.Parallel()

	o := &Order{
		PriceMode: PriceFixed,
		Items: []OrderItem{
			{Quantity: 3, EstimateCurrency: "USD", Currency: "USD", UnitPriceEstimate: d("10"),
				FixedUnitPrice: decimal.NullDecimal{Decimal: d("9"), Valid: true}},
			{Quantity: 1, EstimateCurrency: "USD", Currency: "USD", UnitPriceEstimate: d("4")},
		},
	}
	assert.True(t, o.TotalIn("USD").Equal(d("31")))
	assert.True(t, o.TotalIn("EUR").IsZero())

	o.PriceMode = PriceEstimate
	assert.True(t, o.TotalIn("USD").Equal(d("34")), "estimate mode ignores fixed prices")
}

func TestComputeTotals_FixedPriceInAnotherCurrency(t *testing.T) {
	t.Parallel()

	o := &Order{
		PriceMode: PriceFixed,
		Items: []OrderItem{
			{Quantity: 2, EstimateCurrency: "IDR", Currency: "USD", UnitPriceEstimate: d("150000"),
				FixedUnitPrice: decimal.NullDecimal{Decimal: d("11"), Valid: true}},
		},
	}
	assert.True(t, o.TotalIn("USD").Equal(d("22")))
	assert.True(t, o.TotalIn("IDR").IsZero())
	assert.True(t, o.Items[0].UnitPriceEstimate.Equal(d("150000")), "estimate is kept")
}
