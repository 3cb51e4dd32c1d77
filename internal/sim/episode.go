// Package sim implements the startup economy: the action-sanitization
// boundary, the business-physics transition engine, the tiered shock engine,
// and the Rule-of-40 reward function. An Episode threads one EpisodeState
// through those stages per step and owns its own seeded random stream, so
// identical seeds and action sequences reproduce identical trajectories.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"venturesim/internal/model"
)

// ErrEpisodeTerminated is returned by Step after the episode has ended.
var ErrEpisodeTerminated = errors.New("episode already terminated")

// Episode owns the state of one simulated startup. Not safe for concurrent
// use; parallelism belongs across episodes, never within one.
type Episode struct {
	cfg   Config
	rng   *rand.Rand
	state model.EpisodeState
	done  bool
	cause model.TerminationCause
}

// StepResult is what one step call hands back to the orchestrating loop.
type StepResult struct {
	State      model.EpisodeState
	Reward     float64
	RuleOf40   float64
	NewUsers   float64
	Terminated bool
	Cause      model.TerminationCause
}

// NewEpisode validates the configuration and seeds the episode's private
// random stream. Invalid configuration is the one condition that fails fast.
func NewEpisode(cfg Config, seed int64) (*Episode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sim config: %w", err)
	}
	return &Episode{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		state: initialState(cfg),
	}, nil
}

func initialState(cfg Config) model.EpisodeState {
	return model.EpisodeState{
		MRR:                cfg.InitialMRR,
		Cash:               cfg.InitialCash,
		ARPU:               cfg.InitialARPU,
		CAC:                cfg.BaseCAC,
		LTV:                cfg.InitialARPU / cfg.BaseChurn,
		ChurnRate:          cfg.BaseChurn,
		Headcount:          cfg.InitialHeadcount,
		ProductQuality:     cfg.InitialQuality,
		InterestRate:       cfg.BaselineInterestRate,
		ConsumerConfidence: cfg.BaselineConfidence,
		Unemployment:       cfg.BaselineUnemployment,
		Competitors:        cfg.InitialCompetitors,
		ValuationMultiple:  cfg.BaselineValuation,
		InnovationFactor:   1.0,
		Phase:              model.PhaseNormal,
	}
}

// State returns the current snapshot.
func (e *Episode) State() model.EpisodeState {
	return e.state
}

// Config returns the immutable parameters the episode was built with.
func (e *Episode) Config() Config {
	return e.cfg
}

// Done reports whether the episode has terminated.
func (e *Episode) Done() bool {
	return e.done
}

// Cause returns the termination cause, or CauseNone while running.
func (e *Episode) Cause() model.TerminationCause {
	return e.cause
}

// Step advances the simulation by one month: sanitize the action, update the
// macro sub-state, run the business physics, score the transition, and check
// termination. The state is replaced wholesale.
func (e *Episode) Step(raw model.ActionBundle) (StepResult, error) {
	if e.done {
		return StepResult{}, ErrEpisodeTerminated
	}

	action := SanitizeAction(e.cfg, raw)
	prev := e.state

	next := applyShocks(e.cfg, e.rng, prev)
	next, facts := applyTransition(e.cfg, next, action)
	next.StepIndex = prev.StepIndex + 1

	reward, rule40 := scoreTransition(e.cfg, prev, next, facts.Burn)
	terminated, cause := checkTermination(e.cfg, next)

	e.state = next
	if terminated {
		e.done = true
		e.cause = cause
	}

	return StepResult{
		State:      next,
		Reward:     reward,
		RuleOf40:   rule40,
		NewUsers:   facts.NewUsers,
		Terminated: terminated,
		Cause:      cause,
	}, nil
}
