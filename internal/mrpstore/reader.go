package mrpstore

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mrpworks-backend/internal/mrp"
	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// Reader is the GORM-backed read side of the storage adapter.
type Reader struct {
	db *gorm.DB
}

// NewReader returns a source reader bound to the provided database.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

func (r *Reader) BOMEdges(ctx context.Context) ([]models.BomEdge, error) {
	var edges []models.BomEdge
	err := r.db.WithContext(ctx).
		Order("parent_part ASC, child_part ASC, id ASC").
		Find(&edges).Error
	return edges, err
}

func (r *Reader) Items(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).Order("part ASC").Find(&items).Error
	return items, err
}

func (r *Reader) PreferredSupplierLeadTimes(ctx context.Context) ([]models.SupplierItem, error) {
	var suppliers []models.SupplierItem
	err := r.db.WithContext(ctx).
		Where("preferred = ?", true).
		Order("part ASC, supplier_id ASC").
		Find(&suppliers).Error
	return suppliers, err
}

func (r *Reader) OpenSalesOrders(ctx context.Context) ([]models.SalesOrderLine, error) {
	var lines []models.SalesOrderLine
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SalesOrderOpen).
		Where("qty_ordered > qty_invoiced").
		Order("order_no ASC, id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *Reader) OpenWorkOrders(ctx context.Context) ([]models.WorkOrder, error) {
	var orders []models.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Components").
		Where("status = ?", enums.WorkOrderOpen).
		Order("order_no ASC").
		Find(&orders).Error
	return orders, err
}

func (r *Reader) IssuedStockMovesForWorkOrder(ctx context.Context, orderNo string) ([]models.StockMove, error) {
	var moves []models.StockMove
	err := r.db.WithContext(ctx).
		Where("work_order_no = ?", orderNo).
		Order("id ASC").
		Find(&moves).Error
	return moves, err
}

func (r *Reader) MRPDemands(ctx context.Context) ([]models.MrpDemand, error) {
	var demands []models.MrpDemand
	err := r.db.WithContext(ctx).Order("part ASC, due_date ASC, id ASC").Find(&demands).Error
	return demands, err
}

func (r *Reader) LocationStock(ctx context.Context, locations []string) ([]mrp.LocationStock, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockMove{}).
		Select("stock_moves.part AS part, stock_moves.location AS location, SUM(stock_moves.qty) AS on_hand, MAX(items.reorder_level) AS reorder_level").
		Joins("JOIN items ON items.part = stock_moves.part").
		Group("stock_moves.part, stock_moves.location").
		Order("part ASC, location ASC")
	if len(locations) > 0 {
		query = query.Where("stock_moves.location IN ?", locations)
	}

	var rows []struct {
		Part         string
		Location     string
		OnHand       decimal.Decimal
		ReorderLevel decimal.Decimal
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]mrp.LocationStock, 0, len(rows))
	for _, row := range rows {
		out = append(out, mrp.LocationStock{
			Part:         row.Part,
			Location:     row.Location,
			OnHand:       row.OnHand,
			ReorderLevel: row.ReorderLevel,
		})
	}
	return out, nil
}

func (r *Reader) OpenPurchaseOrders(ctx context.Context) ([]models.PurchaseOrderLine, error) {
	var lines []models.PurchaseOrderLine
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []enums.PurchaseOrderStatus{
			enums.PurchaseOrderCancelled,
			enums.PurchaseOrderRejected,
			enums.PurchaseOrderCompleted,
		}).
		Where("qty_ordered > qty_received").
		Order("order_no ASC, id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *Reader) PositiveStockMoves(ctx context.Context, locations []string) (map[string]decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockMove{}).
		Select("part, SUM(qty) AS on_hand").
		Where("qty > 0").
		Group("part")
	if len(locations) > 0 {
		query = query.Where("location IN ?", locations)
	}

	var rows []struct {
		Part   string
		OnHand decimal.Decimal
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.Part] = row.OnHand
	}
	return out, nil
}
