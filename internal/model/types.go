package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Channel selects a marketing acquisition profile.
type Channel string

const (
	// ChannelPerformance buys users fast at a low saturation ceiling.
	ChannelPerformance Channel = "performance"
	// ChannelBrand builds slower, stickier acquisition with a higher ceiling.
	ChannelBrand Channel = "brand"
)

type MarketingAction struct {
	Spend   float64 `json:"spend"`
	Channel Channel `json:"channel"`
}

type ProductAction struct {
	RAndDSpend float64 `json:"r_and_d_spend"`
}

type HiringAction struct {
	Hires           int     `json:"hires"`
	CostPerEmployee float64 `json:"cost_per_employee"`
}

type PricingAction struct {
	PriceChangePct float64 `json:"price_change_pct"`
}

// ActionBundle groups the decisions executed together in one step. The zero
// value is the no-op action.
type ActionBundle struct {
	Marketing MarketingAction `json:"marketing"`
	Product   ProductAction   `json:"product"`
	Hiring    HiringAction    `json:"hiring"`
	Pricing   PricingAction   `json:"pricing"`
}

// ShockKind tags an exogenous macro disturbance drawn for a step.
type ShockKind string

const (
	ShockRateSpike        ShockKind = "rate_spike"
	ShockConfidenceCrash  ShockKind = "confidence_crash"
	ShockCompetitiveEntry ShockKind = "competitive_entry"
)

// MacroPhase labels the shock engine's position in the business cycle.
type MacroPhase string

const (
	PhaseNormal     MacroPhase = "normal"
	PhaseShocked    MacroPhase = "shocked"
	PhaseCascade    MacroPhase = "recession_cascade"
	PhaseRecovering MacroPhase = "recovering"
)

// TerminationCause explains why an episode stopped accepting steps.
type TerminationCause string

const (
	CauseNone       TerminationCause = ""
	CauseBankruptcy TerminationCause = "bankruptcy"
	CauseTimeLimit  TerminationCause = "time_limit"
)

// EpisodeState is the full snapshot of the startup at one point in time.
// It is replaced wholesale each step; callers never mutate it in place.
type EpisodeState struct {
	MRR  float64 `json:"mrr"`
	Cash float64 `json:"cash"`
	ARPU float64 `json:"arpu"`

	CAC       float64 `json:"cac"`
	LTV       float64 `json:"ltv"`
	ChurnRate float64 `json:"churn_rate"`

	Headcount      int     `json:"headcount"`
	ProductQuality float64 `json:"product_quality"`
	Burn           float64 `json:"burn"`

	InterestRate       float64 `json:"interest_rate"`
	ConsumerConfidence float64 `json:"consumer_confidence"`
	Unemployment       float64 `json:"unemployment"`
	Competitors        int     `json:"competitors"`
	ValuationMultiple  float64 `json:"valuation_multiple"`

	// InnovationFactor is the scarring variable: it only ever decreases, and
	// only while DepressionMonths is past the scarring threshold.
	InnovationFactor float64 `json:"innovation_factor"`
	DepressionMonths int     `json:"depression_months"`

	Phase        MacroPhase  `json:"phase"`
	ActiveShocks []ShockKind `json:"active_shocks,omitempty"`

	StepIndex int `json:"step_index"`
}

// EpisodeOutcome is the terminal summary of one simulated episode.
type EpisodeOutcome struct {
	Episode         int              `json:"episode"`
	Seed            int64            `json:"seed"`
	Steps           int              `json:"steps"`
	Cause           TerminationCause `json:"cause"`
	TotalReward     float64          `json:"total_reward"`
	FinalMRR        float64          `json:"final_mrr"`
	FinalCash       float64          `json:"final_cash"`
	FinalQuality    float64          `json:"final_quality"`
	FinalInnovation float64          `json:"final_innovation"`
}

// RunAggregates summarizes a batch of episode outcomes.
type RunAggregates struct {
	BankruptcyRate float64 `json:"bankruptcy_rate"`
	MeanSteps      float64 `json:"mean_steps"`
	MeanReward     float64 `json:"mean_reward"`
	MedianReward   float64 `json:"median_reward"`
	MeanFinalMRR   float64 `json:"mean_final_mrr"`
	MeanFinalCash  float64 `json:"mean_final_cash"`
	P10FinalCash   float64 `json:"p10_final_cash"`
	P90FinalCash   float64 `json:"p90_final_cash"`
}

// RunRecord is the persisted summary of one batch run.
type RunRecord struct {
	VersionedRecord
	ID           string `json:"id"`
	CreatedAtUTC string `json:"created_at_utc"`
	AgentName    string `json:"agent_name"`
	Seed         int64  `json:"seed"`
	Episodes     int    `json:"episodes"`
	Horizon      int    `json:"horizon"`
	RunAggregates
}

// StepSnapshot records one step of a captured trajectory.
type StepSnapshot struct {
	Step     int          `json:"step"`
	Action   ActionBundle `json:"action"`
	State    EpisodeState `json:"state"`
	Reward   float64      `json:"reward"`
	RuleOf40 float64      `json:"rule_of_40"`
}

// EpisodeTrajectory is the persisted step-by-step trace of one episode.
type EpisodeTrajectory struct {
	VersionedRecord
	RunID   string         `json:"run_id"`
	Episode int            `json:"episode"`
	Seed    int64          `json:"seed"`
	Steps   []StepSnapshot `json:"steps"`
}
