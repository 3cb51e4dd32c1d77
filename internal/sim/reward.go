package sim

import "venturesim/internal/model"

// ruleOf40 is growth percentage plus margin percentage for the transition
// just produced.
func ruleOf40(prevMRR, mrr, burn float64) float64 {
	growth := 0.0
	if prevMRR > 0 {
		growth = (mrr - prevMRR) / prevMRR * 100
	}
	margin := 0.0
	if mrr > 0 {
		margin = (mrr - burn) / mrr * 100
	}
	return growth + margin
}

// scoreTransition turns a state transition into a scalar reward: scaled
// Rule of 40, a fixed penalty for burning cash without growth, a terminal
// penalty for bankruptcy, and continuous penalties for innovation scarring
// and valuation compression.
func scoreTransition(cfg Config, prev, next model.EpisodeState, burn float64) (reward, rule40 float64) {
	rule40 = ruleOf40(prev.MRR, next.MRR, burn)

	reward = cfg.RewardScale * rule40
	if rule40 < 0 {
		reward -= cfg.NegativeRule40Penalty
	}
	if next.Cash < 0 {
		reward -= cfg.BankruptcyPenalty
	}
	reward -= cfg.ScarringPenaltyWeight * (1 - next.InnovationFactor)
	if next.ValuationMultiple < cfg.BaselineValuation {
		reward -= cfg.ValuationPenaltyWeight * (cfg.BaselineValuation - next.ValuationMultiple)
	}
	return reward, rule40
}

// checkTermination reports whether the state just produced ends the episode.
// Bankruptcy wins over the time limit when both hold on the same step.
func checkTermination(cfg Config, s model.EpisodeState) (bool, model.TerminationCause) {
	if s.Cash < 0 {
		return true, model.CauseBankruptcy
	}
	if s.StepIndex >= cfg.Horizon {
		return true, model.CauseTimeLimit
	}
	return false, model.CauseNone
}
