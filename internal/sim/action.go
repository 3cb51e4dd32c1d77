package sim

import (
	"math"

	"venturesim/internal/model"
)

// SanitizeAction absorbs arbitrary agent output and returns a bundle the
// engine can trust: every numeric field finite and inside its domain, the
// channel one of the known presets. Missing fields degrade to the no-op
// action. It never reports failure.
func SanitizeAction(cfg Config, raw model.ActionBundle) model.ActionBundle {
	out := raw

	out.Marketing.Spend = nonNegative(out.Marketing.Spend)
	if out.Marketing.Channel != model.ChannelBrand {
		out.Marketing.Channel = model.ChannelPerformance
	}

	out.Product.RAndDSpend = nonNegative(out.Product.RAndDSpend)

	if out.Hiring.Hires < 0 {
		out.Hiring.Hires = 0
	}
	out.Hiring.CostPerEmployee = nonNegative(out.Hiring.CostPerEmployee)
	if out.Hiring.Hires > 0 && out.Hiring.CostPerEmployee == 0 {
		// A hire with no stated cost is malformed; drop it rather than grant
		// free headcount.
		out.Hiring.Hires = 0
	}

	pct := out.Pricing.PriceChangePct
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	out.Pricing.PriceChangePct = clamp(pct, -cfg.MaxPriceDrop, cfg.MaxPriceHike)

	return out
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
