package booking

import (
	"fmt"
	"time"

	"tajriba/config"
)

// RefundPolicy computes the refundable amount for a cancellation. Tiers are
// configuration (per deployment, eventually per host tier), never
// hard-coded: the default is 100% at 48h+ before start, 50% between 48h and
// 24h, 0% after.
type RefundPolicy struct {
	tiers []config.RefundTier // sorted by HoursBefore descending
}

// NewRefundPolicy validates and builds a policy from parsed tiers.
func NewRefundPolicy(tiers []config.RefundTier) (*RefundPolicy, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("refund policy needs at least one tier")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].HoursBefore >= tiers[i-1].HoursBefore {
			return nil, fmt.Errorf("refund tiers must be strictly descending by hours")
		}
	}
	return &RefundPolicy{tiers: tiers}, nil
}

// RefundAmount is a pure function of (now, serviceStart, totalPrice): the
// first tier whose lead time is still satisfied wins; past the last tier
// (or past the start) nothing is refunded.
func (p *RefundPolicy) RefundAmount(now, serviceStart time.Time, totalPrice float64) float64 {
	lead := serviceStart.Sub(now)
	for _, tier := range p.tiers {
		if lead >= time.Duration(tier.HoursBefore)*time.Hour {
			return totalPrice * tier.RefundPercent / 100
		}
	}
	return 0
}
