package mrpstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
)

const insertBatchSize = 500

// Workset is the GORM-backed write side of the storage adapter. Every
// row carries the run id, so runs never see each other's data and
// Release is a handful of deletes.
type Workset struct {
	db *gorm.DB
}

// NewWorkset returns a working-set store bound to the provided database.
func NewWorkset(db *gorm.DB) *Workset {
	return &Workset{db: db}
}

// Init clears any leftover rows for the run id. Run ids are fresh UUIDs,
// so this is a no-op in practice; it guards against id reuse by callers.
func (w *Workset) Init(ctx context.Context, runID uuid.UUID) error {
	return w.Release(ctx, runID)
}

func (w *Workset) SaveLevels(ctx context.Context, runID uuid.UUID, levels []models.MrpLevel) error {
	if len(levels) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).CreateInBatches(levels, insertBatchSize).Error
}

func (w *Workset) SaveRequirements(ctx context.Context, runID uuid.UUID, reqs []models.MrpRequirement) error {
	if len(reqs) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).CreateInBatches(reqs, insertBatchSize).Error
}

func (w *Workset) SaveSupplies(ctx context.Context, runID uuid.UUID, sups []models.MrpSupply) error {
	if len(sups) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).CreateInBatches(sups, insertBatchSize).Error
}

func (w *Workset) SavePlannedOrders(ctx context.Context, runID uuid.UUID, orders []models.MrpPlannedOrder) error {
	if len(orders) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).CreateInBatches(orders, insertBatchSize).Error
}

func (w *Workset) SaveParameters(ctx context.Context, params models.MrpRunParameter) error {
	return w.db.WithContext(ctx).Create(&params).Error
}

func (w *Workset) Requirements(ctx context.Context, runID uuid.UUID) ([]models.MrpRequirement, error) {
	var reqs []models.MrpRequirement
	err := w.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("part ASC, date_required ASC, id ASC").
		Find(&reqs).Error
	return reqs, err
}

func (w *Workset) Supplies(ctx context.Context, runID uuid.UUID) ([]models.MrpSupply, error) {
	var sups []models.MrpSupply
	err := w.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("part ASC, due_date ASC, id ASC").
		Find(&sups).Error
	return sups, err
}

func (w *Workset) PlannedOrders(ctx context.Context, runID uuid.UUID) ([]models.MrpPlannedOrder, error) {
	var orders []models.MrpPlannedOrder
	err := w.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("part ASC, due_date ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

func (w *Workset) Levels(ctx context.Context, runID uuid.UUID) ([]models.MrpLevel, error) {
	var levels []models.MrpLevel
	err := w.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("llc ASC, part ASC").
		Find(&levels).Error
	return levels, err
}

// Release drops every working row the run owns. Idempotent; failures
// from individual tables are combined so one stuck table does not hide
// the rest.
func (w *Workset) Release(ctx context.Context, runID uuid.UUID) error {
	db := w.db.WithContext(ctx)
	return multierr.Combine(
		db.Where("run_id = ?", runID).Delete(&models.MrpRequirement{}).Error,
		db.Where("run_id = ?", runID).Delete(&models.MrpSupply{}).Error,
		db.Where("run_id = ?", runID).Delete(&models.MrpPlannedOrder{}).Error,
		db.Where("run_id = ?", runID).Delete(&models.MrpLevel{}).Error,
		db.Where("run_id = ?", runID).Delete(&models.MrpRunParameter{}).Error,
	)
}

// ReleaseBefore drops retained run snapshots whose run timestamp is
// older than the cutoff, returning how many runs were pruned. Used by
// the retention job.
func (w *Workset) ReleaseBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var runIDs []uuid.UUID
	err := w.db.WithContext(ctx).
		Model(&models.MrpRunParameter{}).
		Where("run_at < ?", cutoff).
		Pluck("run_id", &runIDs).Error
	if err != nil {
		return 0, err
	}
	for _, runID := range runIDs {
		if err := w.Release(ctx, runID); err != nil {
			return 0, err
		}
	}
	return len(runIDs), nil
}
