package sim

import (
	"math"

	"venturesim/internal/model"
)

// stepFacts carries transition byproducts the reward function and callers
// need but that are not part of the persistent state.
type stepFacts struct {
	NewUsers float64
	Burn     float64
	Hires    int
}

// acquiredUsers evaluates the diminishing-returns saturation curve. The
// result approaches but never reaches Beta as spend grows.
func acquiredUsers(p ChannelParams, spend float64) float64 {
	if spend <= 0 {
		return 0
	}
	s := math.Pow(spend, p.Alpha)
	return p.Beta * s / (math.Pow(p.Gamma, p.Alpha) + s)
}

// churnRate combines product quality, macro sentiment and cohort tenure.
// Quality must be the value going into the step, not the just-updated one.
func churnRate(cfg Config, quality, confidence float64, tenureMonths int) float64 {
	macro := 1.0
	if confidence < cfg.BaselineConfidence {
		macro += cfg.ConfidenceChurnSlope * (cfg.BaselineConfidence - confidence) / cfg.BaselineConfidence
	}
	tenure := math.Exp(-cfg.TenureDecayRate * float64(tenureMonths))
	if tenure < cfg.TenureDecayFloor {
		tenure = cfg.TenureDecayFloor
	}
	raw := cfg.BaseChurn * (1 - quality/2) * macro * tenure
	return clamp(raw, cfg.MinChurn, cfg.MaxChurn)
}

// improveQuality applies R&D spend with diminishing returns toward 1.0.
// Scarring shows up here: a depressed innovation factor makes every R&D
// dollar less effective.
func improveQuality(cfg Config, quality, spend, innovation float64) float64 {
	if spend <= 0 {
		return clamp(quality, 0, 1)
	}
	delta := spend * cfg.RDEfficiency * (1 - quality) * innovation
	if spend > cfg.BigBetThreshold {
		delta *= cfg.BigBetBonus
	}
	return clamp(quality+delta, 0, 1)
}

// updateCAC blends the prior CAC with this step's realized acquisition cost,
// scaled by competitive and rate pressure. Without meaningful acquisition the
// prior value carries over.
func updateCAC(cfg Config, prior, spend, newUsers, interest float64, competitors int, priceChange float64) float64 {
	cac := prior
	if spend > 0 && newUsers >= 1 {
		pressure := 1.0
		if interest > cfg.BaselineInterestRate {
			pressure += cfg.RateCACSlope * (interest - cfg.BaselineInterestRate)
		}
		pressure += cfg.CompetitorCACSlope * float64(competitors)
		if priceChange > 0 {
			pressure += cfg.PriceCACSlope * priceChange
		}
		cac = (1-cfg.CACBlend)*prior + cfg.CACBlend*(spend/newUsers)*pressure
	}
	if cac < cfg.CACFloor {
		cac = cfg.CACFloor
	}
	return cac
}

func lifetimeValue(cfg Config, arpu, churn float64) float64 {
	if churn < cfg.LTVChurnFloor {
		churn = cfg.LTVChurnFloor
	}
	return arpu / churn
}

// applyTransition computes the next business metrics from the post-shock
// state and a sanitized action. The cash-flow ordering is fixed: MRR update,
// pricing effect, revenue collection, then one combined debit for payroll and
// discretionary spend.
func applyTransition(cfg Config, state model.EpisodeState, act model.ActionBundle) (model.EpisodeState, stepFacts) {
	next := state

	// Snapshot values that must not see this step's own updates.
	quality := state.ProductQuality
	churn := churnRate(cfg, quality, state.ConsumerConfidence, state.StepIndex)

	newUsers := acquiredUsers(cfg.channelParams(act.Marketing.Channel), act.Marketing.Spend)

	// Runway guard: cap hires so the one-time cost cannot sink the runway
	// below the configured floor.
	hires := act.Hiring.Hires
	if hires > 0 {
		maxHires := int(state.Cash / cfg.RunwayFloorMonths / act.Hiring.CostPerEmployee)
		if maxHires < 0 {
			maxHires = 0
		}
		if hires > maxHires {
			hires = maxHires
		}
	}
	hiringCost := float64(hires) * act.Hiring.CostPerEmployee

	// (1) MRR from prior-period churn plus newly acquired users.
	next.MRR = next.MRR*(1-churn) + newUsers*next.ARPU

	// (2) Pricing effect on ARPU, with elasticity leakage on realized MRR.
	pct := act.Pricing.PriceChangePct
	if pct != 0 {
		next.ARPU *= 1 + pct
		realized := pct * (1 - cfg.PriceElasticity*math.Abs(pct))
		next.MRR *= 1 + realized
		if next.MRR < 0 {
			next.MRR = 0
		}
	}

	// (3) Collect revenue.
	next.Cash += next.MRR

	// (4) Single combined debit. Splitting payroll and spend into separate
	// debits double-counts burn.
	next.Headcount += hires
	payroll := float64(next.Headcount)*cfg.SalaryPerEmployee + cfg.FixedOverhead
	discretionary := act.Marketing.Spend + act.Product.RAndDSpend + hiringCost
	burn := payroll + discretionary
	next.Cash -= burn

	next.CAC = updateCAC(cfg, state.CAC, act.Marketing.Spend, newUsers, state.InterestRate, state.Competitors, pct)
	next.LTV = lifetimeValue(cfg, next.ARPU, churn)
	next.ChurnRate = churn
	next.ProductQuality = improveQuality(cfg, quality, act.Product.RAndDSpend, state.InnovationFactor)
	next.Burn = burn

	return next, stepFacts{NewUsers: newUsers, Burn: burn, Hires: hires}
}
