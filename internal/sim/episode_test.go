package sim

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"venturesim/internal/model"
)

func TestNewEpisodeRejectsInvalidConfig(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Horizon = 0 },
		func(c *Config) { c.Horizon = -5 },
		func(c *Config) { c.InitialCash = -1 },
		func(c *Config) { c.MinChurn = 0.5; c.MaxChurn = 0.1 },
		func(c *Config) { c.CACFloor = 0 },
		func(c *Config) { c.RateShockProb = 1.5 },
		func(c *Config) { c.Performance.Beta = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, err := NewEpisode(cfg, 1); err == nil {
			t.Fatalf("case %d: expected construction to fail fast", i)
		}
	}
}

func TestEpisodeDeterminism(t *testing.T) {
	cfg := DefaultConfig()

	actions := make([]model.ActionBundle, 40)
	actionRNG := rand.New(rand.NewSource(99))
	for i := range actions {
		actions[i] = model.ActionBundle{
			Marketing: model.MarketingAction{Spend: actionRNG.Float64() * 30_000, Channel: model.ChannelBrand},
			Product:   model.ProductAction{RAndDSpend: actionRNG.Float64() * 10_000},
			Hiring:    model.HiringAction{Hires: actionRNG.Intn(2), CostPerEmployee: 10_000},
			Pricing:   model.PricingAction{PriceChangePct: actionRNG.Float64()*0.1 - 0.05},
		}
	}

	run := func() ([]model.EpisodeState, []float64) {
		ep, err := NewEpisode(cfg, 42)
		if err != nil {
			t.Fatalf("new episode: %v", err)
		}
		var states []model.EpisodeState
		var rewards []float64
		for _, act := range actions {
			res, err := ep.Step(act)
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			states = append(states, res.State)
			rewards = append(rewards, res.Reward)
			if res.Terminated {
				break
			}
		}
		return states, rewards
	}

	statesA, rewardsA := run()
	statesB, rewardsB := run()
	if !reflect.DeepEqual(statesA, statesB) {
		t.Fatal("identical seeds and actions must reproduce identical state trajectories")
	}
	if !reflect.DeepEqual(rewardsA, rewardsB) {
		t.Fatal("identical seeds and actions must reproduce identical rewards")
	}
}

func TestEpisodeSeedsDiverge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateShockProb = 0.5
	cfg.ConfidenceShockProb = 0.5

	trajectory := func(seed int64) []float64 {
		ep, err := NewEpisode(cfg, seed)
		if err != nil {
			t.Fatalf("new episode: %v", err)
		}
		var rates []float64
		for i := 0; i < 30; i++ {
			res, err := ep.Step(model.ActionBundle{})
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			rates = append(rates, res.State.InterestRate)
			if res.Terminated {
				break
			}
		}
		return rates
	}

	if reflect.DeepEqual(trajectory(1), trajectory(2)) {
		t.Fatal("different seeds should draw different shock sequences")
	}
}

func TestEpisodeZeroActionScenario(t *testing.T) {
	// Seeded company with no revenue and no staff, macro volatility off:
	// cash bleeds fixed overhead only and the episode runs out the clock.
	cfg := DefaultConfig().WithoutVolatility()
	cfg.InitialMRR = 0
	cfg.InitialHeadcount = 0

	ep, err := NewEpisode(cfg, 7)
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}

	prevCash := cfg.InitialCash
	var last StepResult
	for i := 0; i < cfg.Horizon; i++ {
		last, err = ep.Step(model.ActionBundle{})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if last.State.MRR != 0 {
			t.Fatalf("mrr must stay unchanged with zero actions, got %f", last.State.MRR)
		}
		if last.State.Cash > prevCash {
			t.Fatalf("cash must be non-increasing, went %f -> %f", prevCash, last.State.Cash)
		}
		wantDelta := -(float64(last.State.Headcount)*cfg.SalaryPerEmployee + cfg.FixedOverhead)
		if math.Abs((last.State.Cash-prevCash)-wantDelta) > 1e-6 {
			t.Fatalf("zero action should debit exactly payroll+overhead: got %f want %f",
				last.State.Cash-prevCash, wantDelta)
		}
		prevCash = last.State.Cash
	}

	if !last.Terminated || last.Cause != model.CauseTimeLimit {
		t.Fatalf("expected time-limit termination, got %v %s", last.Terminated, last.Cause)
	}
}

func TestEpisodeBankruptcyTerminates(t *testing.T) {
	cfg := DefaultConfig().WithoutVolatility()
	cfg.InitialCash = 10_000
	cfg.InitialMRR = 0
	cfg.InitialHeadcount = 5

	ep, err := NewEpisode(cfg, 3)
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}

	res, err := ep.Step(model.ActionBundle{})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !res.Terminated || res.Cause != model.CauseBankruptcy {
		t.Fatalf("negative cash must terminate with bankruptcy, got %v %s", res.Terminated, res.Cause)
	}
	if res.State.Cash >= 0 {
		t.Fatalf("expected negative cash, got %f", res.State.Cash)
	}
	if !ep.Done() || ep.Cause() != model.CauseBankruptcy {
		t.Fatalf("episode should report done/bankruptcy, got %v %s", ep.Done(), ep.Cause())
	}

	if _, err := ep.Step(model.ActionBundle{}); err != ErrEpisodeTerminated {
		t.Fatalf("steps after termination must be rejected, got %v", err)
	}
}

func TestEpisodeInvariantsOverFullHorizon(t *testing.T) {
	cfg := DefaultConfig()

	ep, err := NewEpisode(cfg, 123)
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}

	act := model.ActionBundle{
		Marketing: model.MarketingAction{Spend: 15_000, Channel: model.ChannelPerformance},
		Product:   model.ProductAction{RAndDSpend: 8_000},
	}
	prevInnovation := 1.0
	for i := 0; i < cfg.Horizon; i++ {
		res, err := ep.Step(act)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		s := res.State
		if s.MRR < 0 {
			t.Fatalf("mrr went negative: %f", s.MRR)
		}
		if s.ChurnRate < cfg.MinChurn || s.ChurnRate > cfg.MaxChurn {
			t.Fatalf("churn out of bounds: %f", s.ChurnRate)
		}
		if s.ProductQuality < 0 || s.ProductQuality > 1 {
			t.Fatalf("quality out of bounds: %f", s.ProductQuality)
		}
		if s.InnovationFactor < 0 || s.InnovationFactor > prevInnovation {
			t.Fatalf("innovation must be non-increasing: %f -> %f", prevInnovation, s.InnovationFactor)
		}
		if math.IsNaN(s.Cash) || math.IsInf(s.Cash, 0) || math.IsNaN(s.LTV) || math.IsInf(s.LTV, 0) {
			t.Fatalf("non-finite value leaked into state: %+v", s)
		}
		prevInnovation = s.InnovationFactor
		if res.Terminated {
			if res.Cause != model.CauseBankruptcy && res.Cause != model.CauseTimeLimit {
				t.Fatalf("unexpected termination cause %s", res.Cause)
			}
			break
		}
	}
}

func TestEpisodeStepIndexAdvances(t *testing.T) {
	cfg := DefaultConfig().WithoutVolatility()

	ep, err := NewEpisode(cfg, 1)
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}
	for i := 1; i <= 3; i++ {
		res, err := ep.Step(model.ActionBundle{})
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if res.State.StepIndex != i {
			t.Fatalf("step index should be %d, got %d", i, res.State.StepIndex)
		}
	}
}
