// Package stats aggregates episode outcomes into run-level summaries and
// writes run artifacts (index JSON, trajectory CSV) for offline analysis.
package stats

import (
	"sort"

	"venturesim/internal/model"
)

// Aggregate reduces a batch of episode outcomes to the run-level summary
// persisted with each RunRecord. An empty batch yields the zero value.
func Aggregate(outcomes []model.EpisodeOutcome) model.RunAggregates {
	if len(outcomes) == 0 {
		return model.RunAggregates{}
	}

	var agg model.RunAggregates
	rewards := make([]float64, 0, len(outcomes))
	cashes := make([]float64, 0, len(outcomes))
	bankruptcies := 0

	for _, o := range outcomes {
		if o.Cause == model.CauseBankruptcy {
			bankruptcies++
		}
		agg.MeanSteps += float64(o.Steps)
		agg.MeanReward += o.TotalReward
		agg.MeanFinalMRR += o.FinalMRR
		agg.MeanFinalCash += o.FinalCash
		rewards = append(rewards, o.TotalReward)
		cashes = append(cashes, o.FinalCash)
	}

	n := float64(len(outcomes))
	agg.BankruptcyRate = float64(bankruptcies) / n
	agg.MeanSteps /= n
	agg.MeanReward /= n
	agg.MeanFinalMRR /= n
	agg.MeanFinalCash /= n

	sort.Float64s(rewards)
	sort.Float64s(cashes)
	agg.MedianReward = percentile(rewards, 0.5)
	agg.P10FinalCash = percentile(cashes, 0.1)
	agg.P90FinalCash = percentile(cashes, 0.9)
	return agg
}

// percentile expects a sorted slice and interpolates linearly between ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
