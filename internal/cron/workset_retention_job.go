package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
)

const defaultWorksetTTL = 30 * 24 * time.Hour

// WorksetRetentionJobParams configure pruning of retained run snapshots.
type WorksetRetentionJobParams struct {
	Logger *logger.Logger
	Store  worksetPruner
	TTL    time.Duration
}

type worksetPruner interface {
	ReleaseBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// NewWorksetRetentionJob builds the job that drops audit snapshots past
// their retention window.
func NewWorksetRetentionJob(params WorksetRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("workset store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultWorksetTTL
	}
	return &worksetRetentionJob{
		logg:  params.Logger,
		store: params.Store,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

type worksetRetentionJob struct {
	logg  *logger.Logger
	store worksetPruner
	ttl   time.Duration
	now   func() time.Time
}

func (j *worksetRetentionJob) Name() string { return "workset-retention" }

func (j *worksetRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	pruned, err := j.store.ReleaseBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("workset retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      cutoff,
		"runs_pruned": pruned,
	})
	j.logg.Info(logCtx, "workset retention cleanup complete")
	return nil
}
