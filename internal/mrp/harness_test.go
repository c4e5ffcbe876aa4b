package mrp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

// fakeReader serves fixtures for every source the loaders pull from.
type fakeReader struct {
	edges       []models.BomEdge
	items       []models.Item
	suppliers   []models.SupplierItem
	salesOrders []models.SalesOrderLine
	workOrders  []models.WorkOrder
	issued      map[string][]models.StockMove
	demands     []models.MrpDemand
	locStock    []LocationStock
	purchases   []models.PurchaseOrderLine
	onHand      map[string]decimal.Decimal

	err error
}

func (f *fakeReader) BOMEdges(ctx context.Context) ([]models.BomEdge, error) {
	return f.edges, f.err
}

func (f *fakeReader) Items(ctx context.Context) ([]models.Item, error) {
	return f.items, f.err
}

func (f *fakeReader) PreferredSupplierLeadTimes(ctx context.Context) ([]models.SupplierItem, error) {
	return f.suppliers, f.err
}

func (f *fakeReader) OpenSalesOrders(ctx context.Context) ([]models.SalesOrderLine, error) {
	return f.salesOrders, f.err
}

func (f *fakeReader) OpenWorkOrders(ctx context.Context) ([]models.WorkOrder, error) {
	return f.workOrders, f.err
}

func (f *fakeReader) IssuedStockMovesForWorkOrder(ctx context.Context, orderNo string) ([]models.StockMove, error) {
	return f.issued[orderNo], f.err
}

func (f *fakeReader) MRPDemands(ctx context.Context) ([]models.MrpDemand, error) {
	return f.demands, f.err
}

func (f *fakeReader) LocationStock(ctx context.Context, locations []string) ([]LocationStock, error) {
	if len(locations) == 0 {
		return f.locStock, f.err
	}
	var filtered []LocationStock
	for _, row := range f.locStock {
		for _, loc := range locations {
			if row.Location == loc {
				filtered = append(filtered, row)
				break
			}
		}
	}
	return filtered, f.err
}

func (f *fakeReader) OpenPurchaseOrders(ctx context.Context) ([]models.PurchaseOrderLine, error) {
	return f.purchases, f.err
}

func (f *fakeReader) PositiveStockMoves(ctx context.Context, locations []string) (map[string]decimal.Decimal, error) {
	return f.onHand, f.err
}

// fakeStore records what the engine persists and when it releases.
type fakeStore struct {
	initCalls    int
	levels       []models.MrpLevel
	requirements []models.MrpRequirement
	supplies     []models.MrpSupply
	planned      []models.MrpPlannedOrder
	parameters   *models.MrpRunParameter
	released     []uuid.UUID

	saveErr error
}

func (f *fakeStore) Init(ctx context.Context, runID uuid.UUID) error {
	f.initCalls++
	return nil
}

func (f *fakeStore) SaveLevels(ctx context.Context, runID uuid.UUID, levels []models.MrpLevel) error {
	f.levels = levels
	return f.saveErr
}

func (f *fakeStore) SaveRequirements(ctx context.Context, runID uuid.UUID, reqs []models.MrpRequirement) error {
	f.requirements = reqs
	return f.saveErr
}

func (f *fakeStore) SaveSupplies(ctx context.Context, runID uuid.UUID, sups []models.MrpSupply) error {
	f.supplies = sups
	return f.saveErr
}

func (f *fakeStore) SavePlannedOrders(ctx context.Context, runID uuid.UUID, orders []models.MrpPlannedOrder) error {
	f.planned = orders
	return f.saveErr
}

func (f *fakeStore) SaveParameters(ctx context.Context, params models.MrpRunParameter) error {
	f.parameters = &params
	return f.saveErr
}

func (f *fakeStore) Requirements(ctx context.Context, runID uuid.UUID) ([]models.MrpRequirement, error) {
	return f.requirements, nil
}

func (f *fakeStore) Supplies(ctx context.Context, runID uuid.UUID) ([]models.MrpSupply, error) {
	return f.supplies, nil
}

func (f *fakeStore) PlannedOrders(ctx context.Context, runID uuid.UUID) ([]models.MrpPlannedOrder, error) {
	return f.planned, nil
}

func (f *fakeStore) Levels(ctx context.Context, runID uuid.UUID) ([]models.MrpLevel, error) {
	return f.levels, nil
}

func (f *fakeStore) Release(ctx context.Context, runID uuid.UUID) error {
	f.released = append(f.released, runID)
	return nil
}

// fakeSink records lifecycle notifications.
type fakeSink struct {
	started   []RunInfo
	succeeded []RunInfo
	failed    []error
}

func (f *fakeSink) RunStarted(ctx context.Context, run RunInfo) {
	f.started = append(f.started, run)
}

func (f *fakeSink) RunSucceeded(ctx context.Context, run RunInfo, summary *RunSummary) {
	f.succeeded = append(f.succeeded, run)
}

func (f *fakeSink) RunFailed(ctx context.Context, run RunInfo, runErr error) {
	f.failed = append(f.failed, runErr)
}

type harness struct {
	service *Service
	reader  *fakeReader
	store   *fakeStore
	sink    *fakeSink
	lock    *LocalLock
}

// newHarness wires a service over fakes with a frozen clock.
func newHarness(t *testing.T, reader *fakeReader) *harness {
	t.Helper()
	if reader.issued == nil {
		reader.issued = map[string][]models.StockMove{}
	}
	store := &fakeStore{}
	sink := &fakeSink{}
	lock := NewLocalLock()
	service, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{ServiceName: "mrp-test"}),
		Reader: reader,
		Store:  store,
		Lock:   lock,
		Events: sink,
		Now: func() time.Time {
			return time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return &harness{service: service, reader: reader, store: store, sink: sink, lock: lock}
}

func activeEdge(parent, child string, qtyPer int64) models.BomEdge {
	return models.BomEdge{
		ParentPart:    parent,
		ChildPart:     child,
		QuantityPer:   dec(qtyPer),
		EffectiveFrom: d(2000, time.January, 1),
		EffectiveTo:   d(2100, time.January, 1),
	}
}
