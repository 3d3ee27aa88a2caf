// internal/domain/pricing/pricing.go
package pricing

import "github.com/your-org/storefront-backend/internal/config"

const (
	// DefaultFreeShippingThreshold is 500.00 in cents
	DefaultFreeShippingThreshold int64 = 50000
	// DefaultFlatShippingFee is 25.00 in cents
	DefaultFlatShippingFee int64 = 2500
)

// Line is the part of a cart line the shipping rule looks at
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Result holds the amounts derived from a cart, in cents
type Result struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// Rule charges a flat shipping fee below the free shipping threshold
type Rule struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// DefaultRule returns the storefront's standard shipping rule
func DefaultRule() Rule {
	return Rule{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
	}
}

// NewRule builds the rule from checkout configuration
func NewRule(cfg config.CheckoutConfig) Rule {
	return Rule{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}
}

// Evaluate computes subtotal, shipping and total. It has no side effects and
// returns the same result for the same lines.
func (r Rule) Evaluate(lines []Line) Result {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	shipping := r.ShippingFor(subtotal)
	return Result{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}

// ShippingFor returns the shipping fee for a subtotal
func (r Rule) ShippingFor(subtotal int64) int64 {
	if subtotal >= r.FreeShippingThreshold {
		return 0
	}
	return r.FlatShippingFee
}

// AmountToFreeShipping returns how much more the shopper needs to spend to
// qualify for free shipping, or 0 when already qualified.
func (r Rule) AmountToFreeShipping(subtotal int64) int64 {
	if subtotal >= r.FreeShippingThreshold {
		return 0
	}
	return r.FreeShippingThreshold - subtotal
}
