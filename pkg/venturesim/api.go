// Package venturesim is the embeddable client facade over the simulation
// core: batch runs, run listing, and artifact export against a configured
// store.
package venturesim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"venturesim/internal/agent"
	"venturesim/internal/model"
	"venturesim/internal/runner"
	"venturesim/internal/sim"
	"venturesim/internal/stats"
	"venturesim/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "venturesim.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	Logger     *zap.Logger
}

type Client struct {
	store      storage.Store
	exportsDir string
	logger     *zap.Logger
}

// RunRequest describes one batch run. Zero values fall back to sane
// defaults; SimOverrides, when set, replaces the default economy wholesale.
type RunRequest struct {
	Agent               string
	Episodes            int
	Workers             int
	Seed                int64
	Horizon             int
	DisableVolatility   bool
	CaptureTrajectories bool
	SimOverrides        *sim.Config
}

type RunSummary struct {
	RunID      string
	AgentName  string
	Episodes   int
	Aggregates model.RunAggregates
	Outcomes   []model.EpisodeOutcome
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	AgentName      string
	Seed           int64
	Episodes       int
	Horizon        int
	BankruptcyRate float64
	MeanReward     float64
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{store: store, exportsDir: exportsDir, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Agents lists the registered decision agents.
func (c *Client) Agents() []string {
	return agent.Names()
}

// Run executes a batch of episodes and persists the results.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Agent == "" {
		req.Agent = "boardroom"
	}
	if req.Episodes <= 0 {
		req.Episodes = 100
	}

	simCfg := sim.DefaultConfig()
	if req.SimOverrides != nil {
		simCfg = *req.SimOverrides
	}
	if req.Horizon > 0 {
		simCfg.Horizon = req.Horizon
	}
	if req.DisableVolatility {
		simCfg = simCfg.WithoutVolatility()
	}

	result, err := runner.Run(ctx, runner.Config{
		AgentName:           req.Agent,
		Episodes:            req.Episodes,
		Workers:             req.Workers,
		BaseSeed:            req.Seed,
		Sim:                 simCfg,
		CaptureTrajectories: req.CaptureTrajectories,
		Store:               c.store,
		Logger:              c.logger,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:      result.Run.ID,
		AgentName:  result.Run.AgentName,
		Episodes:   result.Run.Episodes,
		Aggregates: result.Run.RunAggregates,
		Outcomes:   result.Outcomes,
	}, nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunItem, error) {
	runs, err := c.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, RunItem{
			RunID:          run.ID,
			CreatedAtUTC:   run.CreatedAtUTC,
			AgentName:      run.AgentName,
			Seed:           run.Seed,
			Episodes:       run.Episodes,
			Horizon:        run.Horizon,
			BankruptcyRate: run.BankruptcyRate,
			MeanReward:     run.MeanReward,
		})
	}
	return items, nil
}

// Export writes the run index and any captured trajectory CSVs for the given
// run under the exports dir, returning the written CSV paths.
func (c *Client) Export(ctx context.Context, runID string) ([]string, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	index, err := c.store.ListRuns(ctx, 0)
	if err != nil {
		return nil, err
	}
	if err := stats.WriteRunIndex(c.exportsDir, index); err != nil {
		return nil, fmt.Errorf("write run index: %w", err)
	}

	var paths []string
	for episode := 0; episode < run.Episodes; episode++ {
		trajectory, ok, err := c.store.GetTrajectory(ctx, runID, episode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		path, err := stats.WriteTrajectoryCSV(c.exportsDir, trajectory)
		if err != nil {
			return nil, fmt.Errorf("export episode %d: %w", episode, err)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return paths, errors.New("run has no captured trajectories; re-run with trajectory capture enabled")
	}
	return paths, nil
}
