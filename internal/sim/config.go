package sim

import (
	"fmt"

	"venturesim/internal/model"
)

// ChannelParams shapes the diminishing-returns acquisition curve
// newUsers = beta * spend^alpha / (gamma^alpha + spend^alpha).
type ChannelParams struct {
	// Beta is the market-capacity ceiling in users per month.
	Beta float64
	// Gamma is the half-saturation spend.
	Gamma float64
	// Alpha is the curve steepness.
	Alpha float64
}

// Config holds every tuning parameter of the simulated economy. It is supplied
// at episode construction and never mutated afterwards; invalid values fail
// fast in Validate.
type Config struct {
	Horizon int

	InitialCash        float64
	InitialMRR         float64
	InitialARPU        float64
	InitialQuality     float64
	InitialHeadcount   int
	InitialCompetitors int

	// Unit economics.
	BaseCAC            float64
	CACFloor           float64
	CACBlend           float64
	RateCACSlope       float64
	CompetitorCACSlope float64
	PriceCACSlope      float64
	LTVChurnFloor      float64

	// Churn model.
	BaseChurn            float64
	MinChurn             float64
	MaxChurn             float64
	ConfidenceChurnSlope float64
	TenureDecayRate      float64
	TenureDecayFloor     float64

	// Burn.
	SalaryPerEmployee float64
	FixedOverhead     float64
	RunwayFloorMonths float64

	// Product.
	RDEfficiency    float64
	BigBetThreshold float64
	BigBetBonus     float64

	// Pricing.
	PriceElasticity float64
	MaxPriceDrop    float64
	MaxPriceHike    float64

	Performance ChannelParams
	Brand       ChannelParams

	// Macro baselines the mean-reverting fields drift back to.
	BaselineInterestRate float64
	BaselineConfidence   float64
	BaselineUnemployment float64
	BaselineValuation    float64
	MinValuation         float64
	MaxValuation         float64

	// Tier-1 exogenous shock table.
	RateShockProb                    float64
	RateShockDelta                   float64
	RateShockValuationHit            float64
	ConfidenceShockProb              float64
	ConfidenceShockDelta             float64
	ConfidenceShockUnemploymentDelta float64
	CompetitorShockProb              float64
	CompetitorShockPriceHit          float64

	// Tier-2 recession cascade.
	CascadeUnemployment     float64
	CascadeInterestRate     float64
	CascadeConfidenceDrop   float64
	CascadeValuationHit     float64
	CascadeUnemploymentRise float64

	// Tier-3 hysteresis.
	DepressionConfidence float64
	ScarringAfterMonths  int
	ScarringDecay        float64

	// Mean reversion per step while no cascade is engaged.
	ValuationRecovery    float64
	ConfidenceRecovery   float64
	UnemploymentRecovery float64
	InterestRecovery     float64

	// Reward shaping.
	RewardScale            float64
	NegativeRule40Penalty  float64
	BankruptcyPenalty      float64
	ScarringPenaltyWeight  float64
	ValuationPenaltyWeight float64
}

// DefaultConfig returns the tuned baseline economy.
func DefaultConfig() Config {
	return Config{
		Horizon: 120,

		InitialCash:        1_000_000,
		InitialMRR:         50_000,
		InitialARPU:        50,
		InitialQuality:     0.1,
		InitialHeadcount:   1,
		InitialCompetitors: 5,

		BaseCAC:            50,
		CACFloor:           1,
		CACBlend:           0.3,
		RateCACSlope:       0.02,
		CompetitorCACSlope: 0.01,
		PriceCACSlope:      0.1,
		LTVChurnFloor:      0.005,

		BaseChurn:            0.05,
		MinChurn:             0.02,
		MaxChurn:             0.30,
		ConfidenceChurnSlope: 0.8,
		TenureDecayRate:      0.01,
		TenureDecayFloor:     0.5,

		SalaryPerEmployee: 8_000,
		FixedOverhead:     5_000,
		RunwayFloorMonths: 18,

		RDEfficiency:    0.000001,
		BigBetThreshold: 20_000,
		BigBetBonus:     1.2,

		PriceElasticity: 0.5,
		MaxPriceDrop:    0.9,
		MaxPriceHike:    10,

		Performance: ChannelParams{Beta: 400, Gamma: 25_000, Alpha: 1.1},
		Brand:       ChannelParams{Beta: 900, Gamma: 120_000, Alpha: 0.9},

		BaselineInterestRate: 3.0,
		BaselineConfidence:   100,
		BaselineUnemployment: 4.0,
		BaselineValuation:    10,
		MinValuation:         1,
		MaxValuation:         30,

		RateShockProb:                    0.05,
		RateShockDelta:                   1.5,
		RateShockValuationHit:            0.85,
		ConfidenceShockProb:              0.05,
		ConfidenceShockDelta:             20,
		ConfidenceShockUnemploymentDelta: 1.0,
		CompetitorShockProb:              0.03,
		CompetitorShockPriceHit:          0.9,

		CascadeUnemployment:     8.0,
		CascadeInterestRate:     7.0,
		CascadeConfidenceDrop:   10,
		CascadeValuationHit:     0.8,
		CascadeUnemploymentRise: 0.5,

		DepressionConfidence: 50,
		ScarringAfterMonths:  5,
		ScarringDecay:        0.95,

		ValuationRecovery:    0.025,
		ConfidenceRecovery:   0.2,
		UnemploymentRecovery: 0.1,
		InterestRecovery:     0.05,

		RewardScale:            0.1,
		NegativeRule40Penalty:  5,
		BankruptcyPenalty:      100,
		ScarringPenaltyWeight:  20,
		ValuationPenaltyWeight: 0.5,
	}
}

// WithoutVolatility returns a copy with every exogenous shock probability
// zeroed. Cascade, hysteresis and recovery still apply to whatever macro
// state the episode is in.
func (c Config) WithoutVolatility() Config {
	c.RateShockProb = 0
	c.ConfidenceShockProb = 0
	c.CompetitorShockProb = 0
	return c
}

// Validate rejects configurations that represent setup errors rather than
// simulated economic events.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.InitialCash < 0 {
		return fmt.Errorf("initial cash must be non-negative, got %f", c.InitialCash)
	}
	if c.InitialMRR < 0 {
		return fmt.Errorf("initial mrr must be non-negative, got %f", c.InitialMRR)
	}
	if c.InitialARPU <= 0 {
		return fmt.Errorf("initial arpu must be positive, got %f", c.InitialARPU)
	}
	if c.InitialQuality < 0 || c.InitialQuality > 1 {
		return fmt.Errorf("initial quality must be in [0,1], got %f", c.InitialQuality)
	}
	if c.InitialHeadcount < 0 {
		return fmt.Errorf("initial headcount must be non-negative, got %d", c.InitialHeadcount)
	}
	if c.MinChurn < 0 || c.MaxChurn > 1 || c.MinChurn > c.MaxChurn {
		return fmt.Errorf("churn bounds [%f, %f] are invalid", c.MinChurn, c.MaxChurn)
	}
	if c.CACFloor <= 0 {
		return fmt.Errorf("cac floor must be positive, got %f", c.CACFloor)
	}
	if c.LTVChurnFloor <= 0 {
		return fmt.Errorf("ltv churn floor must be positive, got %f", c.LTVChurnFloor)
	}
	if c.BaseCAC <= 0 {
		return fmt.Errorf("base cac must be positive, got %f", c.BaseCAC)
	}
	if c.ScarringDecay <= 0 || c.ScarringDecay > 1 {
		return fmt.Errorf("scarring decay must be in (0,1], got %f", c.ScarringDecay)
	}
	if c.MinValuation <= 0 || c.MinValuation > c.MaxValuation {
		return fmt.Errorf("valuation bounds [%f, %f] are invalid", c.MinValuation, c.MaxValuation)
	}
	for _, p := range []float64{c.RateShockProb, c.ConfidenceShockProb, c.CompetitorShockProb} {
		if p < 0 || p > 1 {
			return fmt.Errorf("shock probability %f outside [0,1]", p)
		}
	}
	for _, ch := range []ChannelParams{c.Performance, c.Brand} {
		if ch.Beta <= 0 || ch.Gamma <= 0 || ch.Alpha <= 0 {
			return fmt.Errorf("channel params %+v must be positive", ch)
		}
	}
	return nil
}

func (c Config) channelParams(ch model.Channel) ChannelParams {
	if ch == model.ChannelBrand {
		return c.Brand
	}
	return c.Performance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
