package mrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
	"github.com/angelmondragon/mrpworks-backend/pkg/metrics"
)

// ServiceParams configure the planning service.
type ServiceParams struct {
	Logger  *logger.Logger
	Reader  SourceReader
	Store   WorkingStore
	Lock    Lock
	Events  EventSink
	Metrics *metrics.RunMetrics
	Now     func() time.Time
}

// Service runs the five-stage planning pipeline: level assignment,
// catalog resolution, requirement and supply loading, then netting.
type Service struct {
	logg    *logger.Logger
	reader  SourceReader
	store   WorkingStore
	lock    Lock
	events  EventSink
	metrics *metrics.RunMetrics
	now     func() time.Time
}

// NewService builds a planning service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("source reader required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("working store required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("run lock required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event sink required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:    params.Logger,
		reader:  params.Reader,
		store:   params.Store,
		lock:    params.Lock,
		events:  params.Events,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Run executes one planning run. Exactly one run may be in flight; a
// second start fails with AlreadyRunning. Every exit path releases the
// working sets unless the caller asked to retain the audit snapshot and
// the run succeeded.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	run := RunInfo{RunID: uuid.New(), Options: opts, StartedAt: s.now()}
	ctx = s.logg.WithRunID(ctx, run.RunID.String())

	if err := opts.Validate(); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, apperrors.Storage(err, "acquire run lock"))
	}
	if !locked {
		return nil, s.fail(ctx, run, apperrors.AlreadyRunning())
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "failed to release run lock", relErr)
		}
	}()

	s.events.RunStarted(ctx, run)
	s.logg.Info(ctx, "planning run started")

	summary, err := s.execute(ctx, run)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	s.events.RunSucceeded(ctx, run, summary)
	s.metrics.ObserveRun(summary.RunTime, summary.PlannedOrderCount, summary.TotalPlannedQty.InexactFloat64())
	doneCtx := s.logg.WithFields(ctx, map[string]any{
		"planned_orders": summary.PlannedOrderCount,
		"duration_ms":    summary.RunTime.Milliseconds(),
	})
	s.logg.Info(doneCtx, "planning run succeeded")
	return summary, nil
}

func (s *Service) fail(ctx context.Context, run RunInfo, err error) error {
	s.events.RunFailed(ctx, run, err)
	s.metrics.ObserveFailure(string(apperrors.As(err).Code()))
	s.logg.Error(ctx, "planning run failed", err)
	return err
}

func (s *Service) execute(ctx context.Context, run RunInfo) (summary *RunSummary, err error) {
	opts := run.Options

	if err := s.store.Init(ctx, run.RunID); err != nil {
		return nil, apperrors.Storage(err, "init working sets")
	}
	defer func() {
		if err == nil && opts.RetainAudit {
			return
		}
		cleanupCtx := context.WithoutCancel(ctx)
		if relErr := s.store.Release(cleanupCtx, run.RunID); relErr != nil {
			err = multierr.Append(err, apperrors.Storage(relErr, "release working sets"))
		}
	}()

	today := dateOnly(run.StartedAt)

	edges, err := s.reader.BOMEdges(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getBOMEdges")
	}
	items, err := s.reader.Items(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getItemMaster")
	}
	suppliers, err := s.reader.PreferredSupplierLeadTimes(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getPreferredSupplierLeadTimes")
	}

	itemsByPart := make(map[string]models.Item, len(items))
	stockParts := make([]string, 0, len(items))
	for _, item := range items {
		itemsByPart[item.Part] = item
		stockParts = append(stockParts, item.Part)
	}

	levels, err := AssignLevels(edges, stockParts)
	if err != nil {
		return nil, err
	}
	catalog := BuildCatalog(items, suppliers)
	if err := s.store.SaveLevels(ctx, run.RunID, stampRun(run.RunID, levelRecords(levels, catalog))); err != nil {
		return nil, apperrors.Storage(err, "save levels")
	}

	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}

	reqs, err := loadRequirements(ctx, s.reader, run.RunID, opts, today, itemsByPart)
	if err != nil {
		return nil, err
	}
	sups, err := loadSupplies(ctx, s.reader, run.RunID, opts)
	if err != nil {
		return nil, err
	}

	net := newNetter(opts, catalog, levels, edges, today)
	for i := range reqs {
		if err := net.addRequirement(&reqs[i]); err != nil {
			return nil, err
		}
	}
	for i := range sups {
		net.addSupply(&sups[i])
	}

	if err := net.run(ctx); err != nil {
		return nil, err
	}

	finalReqs, finalSups, planned := net.results()
	if err := s.store.SaveRequirements(ctx, run.RunID, finalReqs); err != nil {
		return nil, apperrors.Storage(err, "save requirements")
	}
	if err := s.store.SaveSupplies(ctx, run.RunID, finalSups); err != nil {
		return nil, apperrors.Storage(err, "save supplies")
	}
	if err := s.store.SavePlannedOrders(ctx, run.RunID, planned); err != nil {
		return nil, apperrors.Storage(err, "save planned orders")
	}
	if err := s.store.SaveParameters(ctx, opts.AuditRow(run.RunID, run.StartedAt)); err != nil {
		return nil, apperrors.Storage(err, "save run parameters")
	}

	finished := s.now()
	parts, orderCount, totalQty := buildSummary(net, planned)
	return &RunSummary{
		RunID:             run.RunID,
		StartedAt:         run.StartedAt,
		FinishedAt:        finished,
		RunTime:           finished.Sub(run.StartedAt),
		Options:           opts,
		PlannedOrderCount: orderCount,
		TotalPlannedQty:   totalQty,
		Parts:             parts,
	}, nil
}

func stampRun(runID uuid.UUID, records []models.MrpLevel) []models.MrpLevel {
	for i := range records {
		records[i].RunID = runID
	}
	return records
}
