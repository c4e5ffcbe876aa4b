package mrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
)

// LocationStock is one per-location stock position with its reorder level,
// used to compute reorder top-up demand.
type LocationStock struct {
	Part         string
	Location     string
	OnHand       decimal.Decimal
	ReorderLevel decimal.Decimal
}

// SourceReader is the read side of the storage adapter. Every method
// returns a finite snapshot; the engine never mutates source data.
type SourceReader interface {
	BOMEdges(ctx context.Context) ([]models.BomEdge, error)
	Items(ctx context.Context) ([]models.Item, error)
	PreferredSupplierLeadTimes(ctx context.Context) ([]models.SupplierItem, error)
	OpenSalesOrders(ctx context.Context) ([]models.SalesOrderLine, error)
	OpenWorkOrders(ctx context.Context) ([]models.WorkOrder, error)
	IssuedStockMovesForWorkOrder(ctx context.Context, orderNo string) ([]models.StockMove, error)
	MRPDemands(ctx context.Context) ([]models.MrpDemand, error)
	LocationStock(ctx context.Context, locations []string) ([]LocationStock, error)
	OpenPurchaseOrders(ctx context.Context) ([]models.PurchaseOrderLine, error)
	PositiveStockMoves(ctx context.Context, locations []string) (map[string]decimal.Decimal, error)
}

// WorkingStore is the write side of the storage adapter: it owns the
// run-scoped working sets. Release must be safe on every exit path and
// idempotent.
type WorkingStore interface {
	Init(ctx context.Context, runID uuid.UUID) error
	SaveLevels(ctx context.Context, runID uuid.UUID, levels []models.MrpLevel) error
	SaveRequirements(ctx context.Context, runID uuid.UUID, reqs []models.MrpRequirement) error
	SaveSupplies(ctx context.Context, runID uuid.UUID, sups []models.MrpSupply) error
	SavePlannedOrders(ctx context.Context, runID uuid.UUID, orders []models.MrpPlannedOrder) error
	SaveParameters(ctx context.Context, params models.MrpRunParameter) error
	Requirements(ctx context.Context, runID uuid.UUID) ([]models.MrpRequirement, error)
	Supplies(ctx context.Context, runID uuid.UUID) ([]models.MrpSupply, error)
	PlannedOrders(ctx context.Context, runID uuid.UUID) ([]models.MrpPlannedOrder, error)
	Levels(ctx context.Context, runID uuid.UUID) ([]models.MrpLevel, error)
	Release(ctx context.Context, runID uuid.UUID) error
}

// Lock serializes planning runs; a second start while one is in progress
// must fail rather than queue.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RunInfo identifies a run to the event sink.
type RunInfo struct {
	RunID     uuid.UUID
	Options   RunOptions
	StartedAt time.Time
}

// EventSink receives run lifecycle notifications. Implementations must
// not block the engine; delivery failures are logged, never returned.
type EventSink interface {
	RunStarted(ctx context.Context, run RunInfo)
	RunSucceeded(ctx context.Context, run RunInfo, summary *RunSummary)
	RunFailed(ctx context.Context, run RunInfo, runErr error)
}
