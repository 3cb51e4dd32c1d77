// Package runner executes batches of independent episodes. Episodes are
// embarrassingly parallel: each worker builds its own Episode and Agent from
// a seed derived as base+index, so results are identical regardless of the
// worker count, and no state crosses an episode boundary.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"venturesim/internal/agent"
	"venturesim/internal/model"
	"venturesim/internal/sim"
	"venturesim/internal/stats"
	"venturesim/internal/storage"
)

// Config describes one batch run.
type Config struct {
	AgentName           string
	Episodes            int
	Workers             int
	BaseSeed            int64
	Sim                 sim.Config
	CaptureTrajectories bool

	Store  storage.Store
	Logger *zap.Logger
}

// Result is the in-memory outcome of a batch run; the same data lands in the
// Store when one is configured.
type Result struct {
	Run      model.RunRecord
	Outcomes []model.EpisodeOutcome
}

type episodeResult struct {
	outcome    model.EpisodeOutcome
	trajectory *model.EpisodeTrajectory
	err        error
}

// Run executes the batch and persists the run record plus any captured
// trajectories. Cancelling the context stops scheduling new episodes.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Episodes <= 0 {
		return Result{}, fmt.Errorf("episodes must be positive, got %d", cfg.Episodes)
	}
	if err := cfg.Sim.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid sim config: %w", err)
	}
	if _, err := agent.New(cfg.AgentName, cfg.BaseSeed); err != nil {
		return Result{}, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > cfg.Episodes {
		workers = cfg.Episodes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := uuid.NewString()
	logger.Info("starting batch run",
		zap.String("run_id", runID),
		zap.String("agent", cfg.AgentName),
		zap.Int("episodes", cfg.Episodes),
		zap.Int("workers", workers),
		zap.Int64("base_seed", cfg.BaseSeed))

	jobs := make(chan int)
	results := make([]episodeResult, cfg.Episodes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = runEpisode(cfg, runID, idx)
			}
		}()
	}

	scheduled := 0
dispatch:
	for i := 0; i < cfg.Episodes; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			scheduled++
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	outcomes := make([]model.EpisodeOutcome, 0, scheduled)
	for _, res := range results[:scheduled] {
		if res.err != nil {
			return Result{}, res.err
		}
		outcomes = append(outcomes, res.outcome)
	}

	run := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID:              runID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		AgentName:       cfg.AgentName,
		Seed:            cfg.BaseSeed,
		Episodes:        len(outcomes),
		Horizon:         cfg.Sim.Horizon,
		RunAggregates:   stats.Aggregate(outcomes),
	}

	if cfg.Store != nil {
		if err := cfg.Store.SaveRun(ctx, run); err != nil {
			return Result{}, fmt.Errorf("save run: %w", err)
		}
		for _, res := range results[:scheduled] {
			if res.trajectory == nil {
				continue
			}
			if err := cfg.Store.SaveTrajectory(ctx, *res.trajectory); err != nil {
				return Result{}, fmt.Errorf("save trajectory %d: %w", res.trajectory.Episode, err)
			}
		}
	}

	logger.Info("batch run complete",
		zap.String("run_id", runID),
		zap.Float64("bankruptcy_rate", run.BankruptcyRate),
		zap.Float64("mean_reward", run.MeanReward),
		zap.Float64("mean_final_cash", run.MeanFinalCash))

	return Result{Run: run, Outcomes: outcomes}, nil
}

func runEpisode(cfg Config, runID string, idx int) episodeResult {
	seed := cfg.BaseSeed + int64(idx)

	decider, err := agent.New(cfg.AgentName, seed)
	if err != nil {
		return episodeResult{err: err}
	}
	episode, err := sim.NewEpisode(cfg.Sim, seed)
	if err != nil {
		return episodeResult{err: err}
	}

	var trajectory *model.EpisodeTrajectory
	if cfg.CaptureTrajectories {
		trajectory = &model.EpisodeTrajectory{
			VersionedRecord: storage.Stamp(),
			RunID:           runID,
			Episode:         idx,
			Seed:            seed,
		}
	}

	outcome := model.EpisodeOutcome{Episode: idx, Seed: seed}
	for !episode.Done() {
		action := decider.Observe(episode.State())
		res, err := episode.Step(action)
		if err != nil {
			return episodeResult{err: fmt.Errorf("episode %d step: %w", idx, err)}
		}
		outcome.Steps++
		outcome.TotalReward += res.Reward
		if trajectory != nil {
			trajectory.Steps = append(trajectory.Steps, model.StepSnapshot{
				Step:     res.State.StepIndex,
				Action:   action,
				State:    res.State,
				Reward:   res.Reward,
				RuleOf40: res.RuleOf40,
			})
		}
	}

	final := episode.State()
	outcome.Cause = episode.Cause()
	outcome.FinalMRR = final.MRR
	outcome.FinalCash = final.Cash
	outcome.FinalQuality = final.ProductQuality
	outcome.FinalInnovation = final.InnovationFactor
	return episodeResult{outcome: outcome, trajectory: trajectory}
}
