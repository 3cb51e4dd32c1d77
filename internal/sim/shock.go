package sim

import (
	"math/rand"

	"venturesim/internal/model"
)

// shockSpec is one row of the exogenous disturbance table: a tagged kind, its
// per-step probability, and the state mutation it injects.
type shockSpec struct {
	kind  model.ShockKind
	prob  func(cfg Config, s model.EpisodeState) float64
	apply func(cfg Config, s *model.EpisodeState)
}

// shockTable is evaluated once per step, in order, against the episode's own
// random stream. Keeping the rows here rather than scattered conditionals
// keeps the cascade and hysteresis rules auditable in isolation.
var shockTable = []shockSpec{
	{
		kind: model.ShockRateSpike,
		prob: func(cfg Config, _ model.EpisodeState) float64 { return cfg.RateShockProb },
		apply: func(cfg Config, s *model.EpisodeState) {
			s.InterestRate += cfg.RateShockDelta
			s.ValuationMultiple *= cfg.RateShockValuationHit
		},
	},
	{
		kind: model.ShockConfidenceCrash,
		prob: func(cfg Config, _ model.EpisodeState) float64 { return cfg.ConfidenceShockProb },
		apply: func(cfg Config, s *model.EpisodeState) {
			s.ConsumerConfidence -= cfg.ConfidenceShockDelta
			s.Unemployment += cfg.ConfidenceShockUnemploymentDelta
		},
	},
	{
		kind: model.ShockCompetitiveEntry,
		prob: func(cfg Config, s model.EpisodeState) float64 {
			// Traction attracts entrants: probability scales with MRR.
			return cfg.CompetitorShockProb * clamp(s.MRR/100_000, 0.25, 2)
		},
		apply: func(cfg Config, s *model.EpisodeState) {
			s.Competitors++
			s.ARPU *= cfg.CompetitorShockPriceHit
		},
	},
}

// applyShocks advances the macro sub-state by one step: exogenous draws, then
// the recession cascade, then hysteresis bookkeeping, then mean reversion.
func applyShocks(cfg Config, rng *rand.Rand, state model.EpisodeState) model.EpisodeState {
	next := state
	next.ActiveShocks = nil

	for _, spec := range shockTable {
		p := spec.prob(cfg, next)
		if p <= 0 {
			continue
		}
		if rng.Float64() < p {
			spec.apply(cfg, &next)
			next.ActiveShocks = append(next.ActiveShocks, spec.kind)
		}
	}

	// Tier 2: self-reinforcing recession while unemployment and rates are
	// jointly above their trigger levels.
	cascading := next.Unemployment > cfg.CascadeUnemployment && next.InterestRate > cfg.CascadeInterestRate
	if cascading {
		next.ConsumerConfidence -= cfg.CascadeConfidenceDrop
		next.ValuationMultiple *= cfg.CascadeValuationHit
		next.Unemployment += cfg.CascadeUnemploymentRise
	}

	// Tier 3: hysteresis. Sustained depression scars innovation permanently;
	// there is no recovery path for InnovationFactor inside an episode.
	if next.ConsumerConfidence < cfg.DepressionConfidence {
		next.DepressionMonths++
		if next.DepressionMonths > cfg.ScarringAfterMonths {
			next.InnovationFactor *= cfg.ScarringDecay
		}
	} else {
		next.DepressionMonths = 0
	}

	// Mean reversion toward baseline, suppressed while the cascade feeds on
	// itself. Multi-year time constants, not a snap-back.
	if !cascading {
		next.ConsumerConfidence += (cfg.BaselineConfidence - next.ConsumerConfidence) * cfg.ConfidenceRecovery
		next.ValuationMultiple += (cfg.BaselineValuation - next.ValuationMultiple) * cfg.ValuationRecovery
		next.Unemployment += (cfg.BaselineUnemployment - next.Unemployment) * cfg.UnemploymentRecovery
		next.InterestRate += (cfg.BaselineInterestRate - next.InterestRate) * cfg.InterestRecovery
	}

	next.ConsumerConfidence = clamp(next.ConsumerConfidence, 0, 200)
	if next.Unemployment < 0 {
		next.Unemployment = 0
	}
	if next.InterestRate < 0 {
		next.InterestRate = 0
	}
	next.ValuationMultiple = clamp(next.ValuationMultiple, cfg.MinValuation, cfg.MaxValuation)
	next.InnovationFactor = clamp(next.InnovationFactor, 0, 1)

	next.Phase = macroPhase(cfg, next, cascading)
	return next
}

func macroPhase(cfg Config, s model.EpisodeState, cascading bool) model.MacroPhase {
	switch {
	case cascading:
		return model.PhaseCascade
	case len(s.ActiveShocks) > 0:
		return model.PhaseShocked
	case awayFromBaseline(cfg, s):
		return model.PhaseRecovering
	default:
		return model.PhaseNormal
	}
}

// awayFromBaseline reports whether any mean-reverting field is still far
// enough from baseline that reversion is observable.
func awayFromBaseline(cfg Config, s model.EpisodeState) bool {
	const tolerance = 0.02
	switch {
	case relDiff(s.ConsumerConfidence, cfg.BaselineConfidence) > tolerance:
		return true
	case relDiff(s.InterestRate, cfg.BaselineInterestRate) > tolerance:
		return true
	case relDiff(s.Unemployment, cfg.BaselineUnemployment) > tolerance:
		return true
	case relDiff(s.ValuationMultiple, cfg.BaselineValuation) > tolerance:
		return true
	}
	return false
}

func relDiff(v, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	d := (v - baseline) / baseline
	if d < 0 {
		d = -d
	}
	return d
}
