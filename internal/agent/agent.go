// Package agent holds the decision-making side of the simulation: anything
// that can observe an EpisodeState and emit an ActionBundle. The engine is
// agnostic to what sits behind Observe; these baseline agents are heuristic
// rule-sets used for batch runs and as engine stress inputs.
package agent

import (
	"fmt"
	"math/rand"

	"venturesim/internal/model"
)

// Agent is the only contract the engine requires of a decision maker.
type Agent interface {
	Name() string
	Observe(state model.EpisodeState) model.ActionBundle
}

// New builds a registered agent by name. Stochastic agents draw from their
// own stream seeded here, never from shared entropy.
func New(name string, seed int64) (Agent, error) {
	switch name {
	case "cfo":
		return CFO{}, nil
	case "cmo":
		return CMO{}, nil
	case "cpo":
		return CPO{}, nil
	case "boardroom":
		return Boardroom{}, nil
	case "random":
		return NewRandom(seed), nil
	case "zero":
		return Zero{}, nil
	default:
		return nil, fmt.Errorf("unknown agent: %s", name)
	}
}

// Names lists the registered agents, sorted.
func Names() []string {
	return []string{"boardroom", "cfo", "cmo", "cpo", "random", "zero"}
}

// Zero emits the no-op action every step. Useful as a control group.
type Zero struct{}

func (Zero) Name() string { return "zero" }

func (Zero) Observe(model.EpisodeState) model.ActionBundle {
	return model.ActionBundle{}
}

// CFO watches runway and unit-economics efficiency: hires only with a deep
// runway and a healthy LTV:CAC ratio, nudges price up when efficiency slips.
type CFO struct{}

func (CFO) Name() string { return "cfo" }

func (CFO) Observe(state model.EpisodeState) model.ActionBundle {
	burn := state.Burn
	if burn <= 0 {
		burn = float64(state.Headcount) * 8_000
	}
	runway := state.Cash
	if burn > 0 {
		runway = state.Cash / burn
	}

	ratio := state.LTV / maxFloat(state.CAC, 1)

	hires := 0
	if runway > 24 {
		hires = 1
	}
	if ratio < 3 {
		hires = 0
	}

	priceChange := 0.0
	if ratio < 3 {
		priceChange = 0.05
	}

	return model.ActionBundle{
		Hiring:  model.HiringAction{Hires: hires, CostPerEmployee: 10_000},
		Pricing: model.PricingAction{PriceChangePct: priceChange},
	}
}

// CMO sizes marketing spend by the LTV:CAC ratio and prefers the performance
// channel when confidence is depressed.
type CMO struct{}

func (CMO) Name() string { return "cmo" }

func (CMO) Observe(state model.EpisodeState) model.ActionBundle {
	ratio := state.LTV / maxFloat(state.CAC, 1)

	var spend float64
	switch {
	case ratio > 4:
		spend = 20_000
	case ratio > 2:
		spend = 10_000
	default:
		spend = 2_000
	}

	channel := model.ChannelBrand
	if state.ConsumerConfidence < 90 {
		channel = model.ChannelPerformance
	}

	return model.ActionBundle{
		Marketing: model.MarketingAction{Spend: spend, Channel: channel},
	}
}

// CPO spends on R&D against churn, easing off when cash is tight.
type CPO struct{}

func (CPO) Name() string { return "cpo" }

func (CPO) Observe(state model.EpisodeState) model.ActionBundle {
	var spend float64
	switch {
	case state.ChurnRate > 0.04:
		spend = 15_000
	case state.ChurnRate > 0.02:
		spend = 8_000
	default:
		spend = 3_000
	}
	if state.Cash < 200_000 {
		spend /= 2
	}

	return model.ActionBundle{
		Product: model.ProductAction{RAndDSpend: spend},
	}
}

// Boardroom merges the CFO, CMO and CPO partial bundles into one decision.
type Boardroom struct{}

func (Boardroom) Name() string { return "boardroom" }

func (Boardroom) Observe(state model.EpisodeState) model.ActionBundle {
	cfo := CFO{}.Observe(state)
	cmo := CMO{}.Observe(state)
	cpo := CPO{}.Observe(state)

	return model.ActionBundle{
		Marketing: cmo.Marketing,
		Product:   cpo.Product,
		Hiring:    cfo.Hiring,
		Pricing:   cfo.Pricing,
	}
}

// Random emits uniformly drawn bundles. It exists to stress the sanitization
// boundary and the engine's invariants, not to play well.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (*Random) Name() string { return "random" }

func (r *Random) Observe(model.EpisodeState) model.ActionBundle {
	channel := model.ChannelPerformance
	if r.rng.Float64() < 0.5 {
		channel = model.ChannelBrand
	}
	return model.ActionBundle{
		Marketing: model.MarketingAction{
			Spend:   1_000 + r.rng.Float64()*19_000,
			Channel: channel,
		},
		Product: model.ProductAction{RAndDSpend: 1_000 + r.rng.Float64()*9_000},
		Hiring: model.HiringAction{
			Hires:           r.rng.Intn(3),
			CostPerEmployee: 8_000 + r.rng.Float64()*4_000,
		},
		Pricing: model.PricingAction{PriceChangePct: r.rng.Float64()*0.1 - 0.05},
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
