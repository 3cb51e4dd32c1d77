package storage

import (
	"context"

	"venturesim/internal/model"
)

// Store defines persistence for batch-run artifacts. Nothing inside the step
// boundary touches a Store; episodes never persist state across resets.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveTrajectory(ctx context.Context, trajectory model.EpisodeTrajectory) error
	GetTrajectory(ctx context.Context, runID string, episode int) (model.EpisodeTrajectory, bool, error)
}
