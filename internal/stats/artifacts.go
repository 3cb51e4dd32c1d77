package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"venturesim/internal/model"
)

const runIndexFile = "run_index.json"

// WriteRunIndex rewrites the exports-dir index with the given runs.
func WriteRunIndex(dir string, runs []model.RunRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, runIndexFile), payload, 0o644)
}

// ReadRunIndex loads the exports-dir index; a missing file is an empty index.
func ReadRunIndex(dir string) ([]model.RunRecord, error) {
	payload, err := os.ReadFile(filepath.Join(dir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []model.RunRecord
	if err := json.Unmarshal(payload, &runs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", runIndexFile, err)
	}
	return runs, nil
}

// WriteTrajectoryCSV exports one episode trace as
// <dir>/<run-id>/episode_<n>.csv, one row per step.
func WriteTrajectoryCSV(dir string, trajectory model.EpisodeTrajectory) (string, error) {
	runDir := filepath.Join(dir, trajectory.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(runDir, fmt.Sprintf("episode_%d.csv", trajectory.Episode))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"step", "mrr", "cash", "arpu", "cac", "ltv", "churn_rate",
		"headcount", "product_quality", "burn",
		"interest_rate", "consumer_confidence", "unemployment", "competitors",
		"valuation_multiple", "innovation_factor", "depression_months", "phase",
		"marketing_spend", "channel", "r_and_d_spend", "hires", "price_change_pct",
		"reward", "rule_of_40",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, step := range trajectory.Steps {
		s := step.State
		row := []string{
			strconv.Itoa(step.Step),
			formatFloat(s.MRR),
			formatFloat(s.Cash),
			formatFloat(s.ARPU),
			formatFloat(s.CAC),
			formatFloat(s.LTV),
			formatFloat(s.ChurnRate),
			strconv.Itoa(s.Headcount),
			formatFloat(s.ProductQuality),
			formatFloat(s.Burn),
			formatFloat(s.InterestRate),
			formatFloat(s.ConsumerConfidence),
			formatFloat(s.Unemployment),
			strconv.Itoa(s.Competitors),
			formatFloat(s.ValuationMultiple),
			formatFloat(s.InnovationFactor),
			strconv.Itoa(s.DepressionMonths),
			string(s.Phase),
			formatFloat(step.Action.Marketing.Spend),
			string(step.Action.Marketing.Channel),
			formatFloat(step.Action.Product.RAndDSpend),
			strconv.Itoa(step.Action.Hiring.Hires),
			formatFloat(step.Action.Pricing.PriceChangePct),
			formatFloat(step.Reward),
			formatFloat(step.RuleOf40),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
