package checkout

import "github.com/shopspring/decimal"

// Pricing holds the store's shipping policy.
type Pricing struct {
	Currency         string
	ShippingFee      decimal.Decimal
	FreeShippingOver decimal.Decimal
}

// ShippingFor returns the flat fee, waived once subtotal reaches the free
// shipping threshold. A zero threshold never waives the fee.
func (p Pricing) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingOver) {
		return decimal.Zero
	}
	return p.ShippingFee.Round(2)
}
