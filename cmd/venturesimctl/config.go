package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"venturesim/internal/sim"
)

// appConfig carries deployment settings read from the environment. Flags
// override whatever the environment provides.
type appConfig struct {
	StoreKind  string `env:"VENTURESIM_STORE" envDefault:"memory"`
	DBPath     string `env:"VENTURESIM_DB_PATH" envDefault:"venturesim.db"`
	ExportsDir string `env:"VENTURESIM_EXPORTS_DIR" envDefault:"exports"`
	Debug      bool   `env:"VENTURESIM_DEBUG" envDefault:"false"`
}

func loadAppConfig() (appConfig, error) {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// scenario is the YAML shape of an economy override file. Every field is a
// pointer so an absent key leaves the default untouched.
type scenario struct {
	Horizon            *int     `yaml:"horizon"`
	InitialCash        *float64 `yaml:"initial_cash"`
	InitialMRR         *float64 `yaml:"initial_mrr"`
	InitialARPU        *float64 `yaml:"initial_arpu"`
	InitialQuality     *float64 `yaml:"initial_quality"`
	InitialHeadcount   *int     `yaml:"initial_headcount"`
	InitialCompetitors *int     `yaml:"initial_competitors"`

	BaseCAC           *float64 `yaml:"base_cac"`
	BaseChurn         *float64 `yaml:"base_churn"`
	SalaryPerEmployee *float64 `yaml:"salary_per_employee"`
	FixedOverhead     *float64 `yaml:"fixed_overhead"`
	RunwayFloorMonths *float64 `yaml:"runway_floor_months"`
	PriceElasticity   *float64 `yaml:"price_elasticity"`

	RateShockProb       *float64 `yaml:"rate_shock_prob"`
	ConfidenceShockProb *float64 `yaml:"confidence_shock_prob"`
	CompetitorShockProb *float64 `yaml:"competitor_shock_prob"`

	DisableVolatility *bool `yaml:"disable_volatility"`
}

// loadScenario reads a YAML scenario file and applies it on top of the
// default economy. Unknown keys are rejected so typos do not silently run
// the default instead.
func loadScenario(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return sim.Config{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	applyScenario(&cfg, sc)
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return cfg, nil
}

func applyScenario(cfg *sim.Config, sc scenario) {
	if sc.Horizon != nil {
		cfg.Horizon = *sc.Horizon
	}
	if sc.InitialCash != nil {
		cfg.InitialCash = *sc.InitialCash
	}
	if sc.InitialMRR != nil {
		cfg.InitialMRR = *sc.InitialMRR
	}
	if sc.InitialARPU != nil {
		cfg.InitialARPU = *sc.InitialARPU
	}
	if sc.InitialQuality != nil {
		cfg.InitialQuality = *sc.InitialQuality
	}
	if sc.InitialHeadcount != nil {
		cfg.InitialHeadcount = *sc.InitialHeadcount
	}
	if sc.InitialCompetitors != nil {
		cfg.InitialCompetitors = *sc.InitialCompetitors
	}
	if sc.BaseCAC != nil {
		cfg.BaseCAC = *sc.BaseCAC
	}
	if sc.BaseChurn != nil {
		cfg.BaseChurn = *sc.BaseChurn
	}
	if sc.SalaryPerEmployee != nil {
		cfg.SalaryPerEmployee = *sc.SalaryPerEmployee
	}
	if sc.FixedOverhead != nil {
		cfg.FixedOverhead = *sc.FixedOverhead
	}
	if sc.RunwayFloorMonths != nil {
		cfg.RunwayFloorMonths = *sc.RunwayFloorMonths
	}
	if sc.PriceElasticity != nil {
		cfg.PriceElasticity = *sc.PriceElasticity
	}
	if sc.RateShockProb != nil {
		cfg.RateShockProb = *sc.RateShockProb
	}
	if sc.ConfidenceShockProb != nil {
		cfg.ConfidenceShockProb = *sc.ConfidenceShockProb
	}
	if sc.CompetitorShockProb != nil {
		cfg.CompetitorShockProb = *sc.CompetitorShockProb
	}
	if sc.DisableVolatility != nil && *sc.DisableVolatility {
		*cfg = cfg.WithoutVolatility()
	}
}
