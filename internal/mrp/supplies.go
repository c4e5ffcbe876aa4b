package mrp

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

// loadSupplies populates the working supplies set: open purchase orders,
// on-hand stock at the past-due sentinel date, and open work-order
// receipts. MrpDate starts equal to DueDate on every row.
func loadSupplies(ctx context.Context, src SourceReader, runID uuid.UUID, opts RunOptions) ([]models.MrpSupply, error) {
	var sups []models.MrpSupply

	add := func(part string, due time.Time, qty decimal.Decimal, orderType enums.SupplyType, orderNo string) {
		sups = append(sups, models.MrpSupply{
			ID:        uuid.New(),
			RunID:     runID,
			Part:      part,
			DueDate:   due,
			SupplyQty: qty,
			OrderType: orderType,
			OrderNo:   orderNo,
			MrpDate:   due,
		})
	}

	poLines, err := src.OpenPurchaseOrders(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getOpenPurchaseOrders")
	}
	for _, line := range poLines {
		if !line.Status.IsOpenForSupply() {
			continue
		}
		outstanding := line.Outstanding()
		if outstanding.Sign() <= 0 {
			continue
		}
		add(line.Part, line.DeliveryDate, outstanding, enums.SupplyPurchaseOrder, line.OrderNo)
	}

	onHand, err := src.PositiveStockMoves(ctx, opts.LocationFilter())
	if err != nil {
		return nil, apperrors.Storage(err, "getPositiveStockMoves")
	}
	parts := make([]string, 0, len(onHand))
	for part := range onHand {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	for _, part := range parts {
		qty := onHand[part]
		if qty.Sign() <= 0 {
			continue
		}
		add(part, pastDueDate, qty, enums.SupplyOnHand, "")
	}

	workOrders, err := src.OpenWorkOrders(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getOpenWorkOrders")
	}
	for _, wo := range workOrders {
		if wo.Status != enums.WorkOrderOpen {
			continue
		}
		outstanding := wo.OutstandingOutput()
		if outstanding.Sign() <= 0 {
			continue
		}
		add(wo.Part, wo.RequiredBy, outstanding, enums.SupplyWorkOrder, wo.OrderNo)
	}

	return sups, nil
}
