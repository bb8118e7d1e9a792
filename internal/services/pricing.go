package services

// Totals breaks down an order amount in minor units.
type Totals struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Discount int64
	Total    int64
}

// PricingEngine computes tax and shipping for a checkout subtotal.
type PricingEngine interface {
	Quote(subtotal, discount int64) Totals
}

// RatePricing is the config-driven pricing engine: tax as basis points of the
// subtotal, a flat shipping fee waived above a threshold.
type RatePricing struct {
	TaxRateBps       int64
	ShippingFee      int64
	FreeShippingOver int64
}

// Quote applies the configured rates. Total is always
// subtotal + tax + shipping - discount.
func (p RatePricing) Quote(subtotal, discount int64) Totals {
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	tax := subtotal * p.TaxRateBps / 10000

	shipping := p.ShippingFee
	if p.FreeShippingOver > 0 && subtotal >= p.FreeShippingOver {
		shipping = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal + tax + shipping - discount,
	}
}
