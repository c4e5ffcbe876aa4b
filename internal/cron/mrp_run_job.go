package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/mrpworks-backend/internal/mrp"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
)

// planner is the slice of the planning service the job needs.
type planner interface {
	Run(ctx context.Context, opts mrp.RunOptions) (*mrp.RunSummary, error)
}

// MRPRunJobParams configure the scheduled regeneration job.
type MRPRunJobParams struct {
	Logger  *logger.Logger
	Planner planner
	Options mrp.RunOptions
}

// NewMRPRunJob builds the job that regenerates the plan on schedule.
func NewMRPRunJob(params MRPRunJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Planner == nil {
		return nil, fmt.Errorf("planner required")
	}
	return &mrpRunJob{
		logg:    params.Logger,
		planner: params.Planner,
		options: params.Options,
	}, nil
}

type mrpRunJob struct {
	logg    *logger.Logger
	planner planner
	options mrp.RunOptions
}

func (j *mrpRunJob) Name() string { return "mrp-run" }

func (j *mrpRunJob) Run(ctx context.Context) error {
	summary, err := j.planner.Run(ctx, j.options)
	if err != nil {
		// The worker's own lock already serializes cycles; a concurrent
		// ad-hoc run is a skip, not a failure.
		if apperrors.HasCode(err, apperrors.CodeAlreadyRunning) {
			j.logg.Warn(ctx, "planning run already in progress; skipping scheduled run")
			return nil
		}
		return fmt.Errorf("scheduled planning run: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"run_id":         summary.RunID.String(),
		"planned_orders": summary.PlannedOrderCount,
		"total_qty":      summary.TotalPlannedQty.String(),
	})
	j.logg.Info(logCtx, "scheduled planning run complete")
	return nil
}
