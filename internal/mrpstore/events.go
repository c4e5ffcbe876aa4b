package mrpstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/mrpworks-backend/internal/mrp"
	"github.com/angelmondragon/mrpworks-backend/pkg/db"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
	"github.com/angelmondragon/mrpworks-backend/pkg/outbox"
	"github.com/angelmondragon/mrpworks-backend/pkg/outbox/payloads"
)

// OutboxSink delivers run lifecycle events through the transactional
// outbox. Delivery failures are logged and swallowed: the engine never
// waits on, or fails because of, its subscribers.
type OutboxSink struct {
	db     *db.Client
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewOutboxSink wires the sink over the shared database client.
func NewOutboxSink(client *db.Client, service *outbox.Service, logg *logger.Logger) *OutboxSink {
	return &OutboxSink{db: client, outbox: service, logg: logg}
}

func (s *OutboxSink) RunStarted(ctx context.Context, run mrp.RunInfo) {
	s.emit(ctx, enums.EventRunStarted, run, payloads.RunStartedEvent{
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		Parameters: runParameters(run.Options),
	})
}

func (s *OutboxSink) RunSucceeded(ctx context.Context, run mrp.RunInfo, summary *mrp.RunSummary) {
	s.emit(ctx, enums.EventRunSucceeded, run, payloads.RunSucceededEvent{
		RunID:             run.RunID,
		StartedAt:         run.StartedAt,
		FinishedAt:        summary.FinishedAt,
		PlannedOrderCount: summary.PlannedOrderCount,
		TotalPlannedQty:   summary.TotalPlannedQty,
		Parameters:        runParameters(run.Options),
	})
}

func (s *OutboxSink) RunFailed(ctx context.Context, run mrp.RunInfo, runErr error) {
	event := payloads.RunFailedEvent{
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		Error:      runErr.Error(),
		Parameters: runParameters(run.Options),
	}
	if typed := apperrors.As(runErr); typed != nil {
		event.ErrorCode = string(typed.Code())
	}
	s.emit(ctx, enums.EventRunFailed, run, event)
}

func (s *OutboxSink) emit(ctx context.Context, eventType enums.OutboxEventType, run mrp.RunInfo, data any) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregatePlanningRun,
			AggregateID:   run.RunID,
			Data:          data,
			Version:       1,
		})
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to queue run event", err)
	}
}

func runParameters(opts mrp.RunOptions) payloads.RunParameters {
	return payloads.RunParameters{
		UseMRPDemands:          opts.UseMRPDemands,
		UseReorderLevelDemands: opts.UseReorderLevelDemands,
		UseEOQ:                 opts.UseEOQ,
		UsePanSize:             opts.UsePanSize,
		UseShrinkage:           opts.UseShrinkage,
		LeewayDays:             opts.LeewayDays,
		Locations:              opts.Locations,
	}
}
