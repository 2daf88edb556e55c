package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPolicy is returned when a discount policy cannot produce a monotonic schedule.
var ErrInvalidPolicy = errors.New("pricing: invalid discount policy")

// Policy describes a linear bundle discount schedule. The discount grows from
// LowPercent at LowAnchor items to HighPercent at HighAnchor items and stays flat
// afterwards. Selections of a single item are never discounted.
type Policy struct {
	Name        string
	LowPercent  int64
	HighPercent int64
	LowAnchor   int
	HighAnchor  int
}

var (
	// PolicyBundle is the 20%..50% schedule anchored at 2 and 10 items.
	PolicyBundle = Policy{Name: "bundle", LowPercent: 20, HighPercent: 50, LowAnchor: 2, HighAnchor: 10}
	// PolicyLegacy is the 10%..40% schedule anchored at 1 and 10 items.
	PolicyLegacy = Policy{Name: "legacy", LowPercent: 10, HighPercent: 40, LowAnchor: 1, HighAnchor: 10}
)

// PolicyByName resolves a configured policy name. An empty name selects PolicyBundle.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyBundle.Name:
		return PolicyBundle, nil
	case PolicyLegacy.Name:
		return PolicyLegacy, nil
	default:
		return Policy{}, fmt.Errorf("%w: unknown policy %q", ErrInvalidPolicy, name)
	}
}

// Validate ensures the schedule is bounded and non-decreasing.
func (p Policy) Validate() error {
	if p.LowPercent < 0 || p.HighPercent > 100 || p.HighPercent < p.LowPercent {
		return fmt.Errorf("%w: percent bounds %d..%d", ErrInvalidPolicy, p.LowPercent, p.HighPercent)
	}
	if p.LowAnchor < 1 || p.HighAnchor <= p.LowAnchor {
		return fmt.Errorf("%w: anchors %d..%d", ErrInvalidPolicy, p.LowAnchor, p.HighAnchor)
	}
	return nil
}

// rate returns the discount percentage for count items as the fraction num/den.
func (p Policy) rate(count int) (num, den int64) {
	if count <= 1 {
		return 0, 1
	}
	if count <= p.LowAnchor {
		return p.LowPercent, 1
	}
	if count >= p.HighAnchor {
		return p.HighPercent, 1
	}
	span := int64(p.HighAnchor - p.LowAnchor)
	num = p.LowPercent*span + int64(count-p.LowAnchor)*(p.HighPercent-p.LowPercent)
	return num, span
}
