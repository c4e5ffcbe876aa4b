package mrpstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/internal/mrp"
	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// Memory is an in-process implementation of both adapter sides, used by
// tests and embedded deployments that plan straight from fixtures.
type Memory struct {
	mu sync.RWMutex

	Edges          []models.BomEdge
	ItemMaster     []models.Item
	Suppliers      []models.SupplierItem
	SalesOrders    []models.SalesOrderLine
	WorkOrders     []models.WorkOrder
	StockMoves     []models.StockMove
	Demands        []models.MrpDemand
	PurchaseOrders []models.PurchaseOrderLine

	worksets map[uuid.UUID]*memWorkset
}

type memWorkset struct {
	levels       []models.MrpLevel
	requirements []models.MrpRequirement
	supplies     []models.MrpSupply
	planned      []models.MrpPlannedOrder
	parameters   *models.MrpRunParameter
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{worksets: make(map[uuid.UUID]*memWorkset)}
}

// ---- SourceReader ----

func (m *Memory) BOMEdges(ctx context.Context) ([]models.BomEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.BomEdge(nil), m.Edges...), nil
}

func (m *Memory) Items(ctx context.Context) ([]models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Item(nil), m.ItemMaster...), nil
}

func (m *Memory) PreferredSupplierLeadTimes(ctx context.Context) ([]models.SupplierItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var preferred []models.SupplierItem
	for _, sup := range m.Suppliers {
		if sup.Preferred {
			preferred = append(preferred, sup)
		}
	}
	return preferred, nil
}

func (m *Memory) OpenSalesOrders(ctx context.Context) ([]models.SalesOrderLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open []models.SalesOrderLine
	for _, line := range m.SalesOrders {
		if line.Status == enums.SalesOrderOpen && line.Outstanding().Sign() > 0 {
			open = append(open, line)
		}
	}
	return open, nil
}

func (m *Memory) OpenWorkOrders(ctx context.Context) ([]models.WorkOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open []models.WorkOrder
	for _, wo := range m.WorkOrders {
		if wo.Status == enums.WorkOrderOpen {
			open = append(open, wo)
		}
	}
	return open, nil
}

func (m *Memory) IssuedStockMovesForWorkOrder(ctx context.Context, orderNo string) ([]models.StockMove, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var moves []models.StockMove
	for _, move := range m.StockMoves {
		if move.WorkOrderNo != nil && *move.WorkOrderNo == orderNo {
			moves = append(moves, move)
		}
	}
	return moves, nil
}

func (m *Memory) MRPDemands(ctx context.Context) ([]models.MrpDemand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.MrpDemand(nil), m.Demands...), nil
}

func (m *Memory) LocationStock(ctx context.Context, locations []string) ([]mrp.LocationStock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reorder := make(map[string]decimal.Decimal, len(m.ItemMaster))
	for _, item := range m.ItemMaster {
		reorder[item.Part] = item.ReorderLevel
	}
	type key struct{ part, location string }
	onHand := make(map[key]decimal.Decimal)
	var order []key
	for _, move := range m.StockMoves {
		if !locationMatches(move.Location, locations) {
			continue
		}
		k := key{move.Part, move.Location}
		if _, ok := onHand[k]; !ok {
			order = append(order, k)
		}
		onHand[k] = onHand[k].Add(move.Qty)
	}
	out := make([]mrp.LocationStock, 0, len(order))
	for _, k := range order {
		out = append(out, mrp.LocationStock{
			Part:         k.part,
			Location:     k.location,
			OnHand:       onHand[k],
			ReorderLevel: reorder[k.part],
		})
	}
	return out, nil
}

func (m *Memory) OpenPurchaseOrders(ctx context.Context) ([]models.PurchaseOrderLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open []models.PurchaseOrderLine
	for _, line := range m.PurchaseOrders {
		if line.Status.IsOpenForSupply() && line.Outstanding().Sign() > 0 {
			open = append(open, line)
		}
	}
	return open, nil
}

func (m *Memory) PositiveStockMoves(ctx context.Context, locations []string) (map[string]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, move := range m.StockMoves {
		if move.Qty.Sign() <= 0 || !locationMatches(move.Location, locations) {
			continue
		}
		out[move.Part] = out[move.Part].Add(move.Qty)
	}
	return out, nil
}

func locationMatches(location string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, loc := range filter {
		if loc == location {
			return true
		}
	}
	return false
}

// ---- WorkingStore ----

func (m *Memory) workset(runID uuid.UUID) *memWorkset {
	ws, ok := m.worksets[runID]
	if !ok {
		ws = &memWorkset{}
		m.worksets[runID] = ws
	}
	return ws
}

func (m *Memory) Init(ctx context.Context, runID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worksets[runID] = &memWorkset{}
	return nil
}

func (m *Memory) SaveLevels(ctx context.Context, runID uuid.UUID, levels []models.MrpLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workset(runID).levels = append([]models.MrpLevel(nil), levels...)
	return nil
}

func (m *Memory) SaveRequirements(ctx context.Context, runID uuid.UUID, reqs []models.MrpRequirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workset(runID).requirements = append([]models.MrpRequirement(nil), reqs...)
	return nil
}

func (m *Memory) SaveSupplies(ctx context.Context, runID uuid.UUID, sups []models.MrpSupply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workset(runID).supplies = append([]models.MrpSupply(nil), sups...)
	return nil
}

func (m *Memory) SavePlannedOrders(ctx context.Context, runID uuid.UUID, orders []models.MrpPlannedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workset(runID).planned = append([]models.MrpPlannedOrder(nil), orders...)
	return nil
}

func (m *Memory) SaveParameters(ctx context.Context, params models.MrpRunParameter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workset(params.RunID)
	ws.parameters = &params
	return nil
}

func (m *Memory) Requirements(ctx context.Context, runID uuid.UUID) ([]models.MrpRequirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ws, ok := m.worksets[runID]; ok {
		return append([]models.MrpRequirement(nil), ws.requirements...), nil
	}
	return nil, nil
}

func (m *Memory) Supplies(ctx context.Context, runID uuid.UUID) ([]models.MrpSupply, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ws, ok := m.worksets[runID]; ok {
		return append([]models.MrpSupply(nil), ws.supplies...), nil
	}
	return nil, nil
}

func (m *Memory) PlannedOrders(ctx context.Context, runID uuid.UUID) ([]models.MrpPlannedOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ws, ok := m.worksets[runID]; ok {
		return append([]models.MrpPlannedOrder(nil), ws.planned...), nil
	}
	return nil, nil
}

func (m *Memory) Levels(ctx context.Context, runID uuid.UUID) ([]models.MrpLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ws, ok := m.worksets[runID]; ok {
		return append([]models.MrpLevel(nil), ws.levels...), nil
	}
	return nil, nil
}

func (m *Memory) Parameters(ctx context.Context, runID uuid.UUID) (*models.MrpRunParameter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ws, ok := m.worksets[runID]; ok {
		return ws.parameters, nil
	}
	return nil, nil
}

func (m *Memory) Release(ctx context.Context, runID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worksets, runID)
	return nil
}

// RetainedRuns lists run ids that still hold a workset.
func (m *Memory) RetainedRuns() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.worksets))
	for id := range m.worksets {
		ids = append(ids, id)
	}
	return ids
}
