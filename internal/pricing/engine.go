package pricing

// Money represents a monetary value stored in minor units (euro cents).
type Money = int64

// DefaultUnitPrice is the per-video price: 99 EUR.
const DefaultUnitPrice Money = 9900

// Quote aggregates computed pricing components for a selection.
type Quote struct {
	UnitPrice       Money   `json:"unitPrice"`
	ItemCount       int     `json:"itemCount"`
	Subtotal        Money   `json:"subtotal"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  Money   `json:"discountAmount"`
	Total           Money   `json:"total"`
}

// HasDiscount reports whether a discount line should be shown.
func (q Quote) HasDiscount() bool {
	return q.DiscountPercent > 0
}

// Engine prices selections with a fixed unit price and a bundle discount policy.
// The zero value uses DefaultUnitPrice and PolicyBundle.
type Engine struct {
	UnitPrice Money
	Policy    Policy
}

// NewEngine validates the inputs and returns a ready engine.
func NewEngine(unitPrice Money, policy Policy) (Engine, error) {
	if unitPrice <= 0 {
		unitPrice = DefaultUnitPrice
	}
	if err := policy.Validate(); err != nil {
		return Engine{}, err
	}
	return Engine{UnitPrice: unitPrice, Policy: policy}, nil
}

func (e Engine) unitPrice() Money {
	if e.UnitPrice <= 0 {
		return DefaultUnitPrice
	}
	return e.UnitPrice
}

func (e Engine) policy() Policy {
	if e.Policy.HighAnchor == 0 {
		return PolicyBundle
	}
	return e.Policy
}

// DiscountPercent returns the bundle discount for count items. Fractional
// percentages are preserved.
func (e Engine) DiscountPercent(count int) float64 {
	num, den := e.policy().rate(count)
	return float64(num) / float64(den)
}

// QuoteCount prices a selection of count items.
func (e Engine) QuoteCount(count int) Quote {
	if count < 0 {
		count = 0
	}
	unit := e.unitPrice()
	subtotal := unit * Money(count)
	num, den := e.policy().rate(count)
	discount := roundHalfUp(subtotal*num, den*100)
	if discount > subtotal {
		discount = subtotal
	}
	return Quote{
		UnitPrice:       unit,
		ItemCount:       count,
		Subtotal:        subtotal,
		DiscountPercent: float64(num) / float64(den),
		DiscountAmount:  discount,
		Total:           subtotal - discount,
	}
}

// ComputeQuote prices the provided items. Only the number of items matters; the
// slice is never modified.
func ComputeQuote[T any](e Engine, items []T) Quote {
	return e.QuoteCount(len(items))
}

// Distribute splits total into n shares that add up to total exactly. Larger
// shares come first. It returns nil when n is not positive.
func Distribute(total Money, n int) []Money {
	if n <= 0 {
		return nil
	}
	base := total / Money(n)
	rem := total % Money(n)
	shares := make([]Money, n)
	for i := range shares {
		shares[i] = base
		if Money(i) < rem {
			shares[i]++
		}
	}
	return shares
}

// roundHalfUp computes round(x/d) with halves rounded away from zero for
// non-negative inputs.
func roundHalfUp(x, d int64) int64 {
	if d <= 0 || x <= 0 {
		return 0
	}
	return (2*x + d) / (2 * d)
}
