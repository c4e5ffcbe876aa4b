package mrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

// loadRequirements populates the working requirements set from the
// external demand drivers. Every row is direct demand; dependent demand
// is injected later by the netter's explosion step.
func loadRequirements(ctx context.Context, src SourceReader, runID uuid.UUID, opts RunOptions, today time.Time, items map[string]models.Item) ([]models.MrpRequirement, error) {
	var reqs []models.MrpRequirement

	add := func(part string, date time.Time, qty decimal.Decimal, demandType enums.DemandType, orderNo string) {
		reqs = append(reqs, models.MrpRequirement{
			RunID:         runID,
			Part:          part,
			DateRequired:  date,
			Quantity:      qty,
			OriginalQty:   qty,
			DemandType:    demandType,
			OrderNo:       orderNo,
			DirectDemand:  true,
			WhereRequired: part,
		})
	}

	salesLines, err := src.OpenSalesOrders(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getOpenSalesOrders")
	}
	for _, line := range salesLines {
		if line.Status != enums.SalesOrderOpen {
			continue
		}
		if item, ok := items[line.Part]; ok && item.Discontinued {
			continue
		}
		outstanding := line.Outstanding()
		if outstanding.Sign() <= 0 {
			continue
		}
		add(line.Part, line.DueDate, outstanding, enums.DemandSalesOrder, line.OrderNo)
	}

	workOrders, err := src.OpenWorkOrders(ctx)
	if err != nil {
		return nil, apperrors.Storage(err, "getOpenWorkOrders")
	}
	for _, wo := range workOrders {
		if wo.Status != enums.WorkOrderOpen {
			continue
		}
		issued, err := issuedByPart(ctx, src, wo.OrderNo)
		if err != nil {
			return nil, err
		}
		for _, comp := range wo.Components {
			if item, ok := items[comp.Part]; ok && item.Discontinued {
				continue
			}
			need := comp.QtyPerUnit.Mul(wo.QtyReqd).Sub(issued[comp.Part])
			if need.Sign() <= 0 {
				continue
			}
			add(comp.Part, wo.RequiredBy, need, enums.DemandWorkOrder, wo.OrderNo)
		}
	}

	if opts.UseMRPDemands {
		demands, err := src.MRPDemands(ctx)
		if err != nil {
			return nil, apperrors.Storage(err, "getMRPDemands")
		}
		for _, d := range demands {
			if d.Qty.Sign() <= 0 {
				continue
			}
			add(d.Part, d.DueDate, d.Qty, enums.DemandMRP, "")
		}
	}

	if opts.UseReorderLevelDemands {
		stock, err := src.LocationStock(ctx, opts.LocationFilter())
		if err != nil {
			return nil, apperrors.Storage(err, "getLocationStock")
		}
		for _, row := range stock {
			gap := row.ReorderLevel.Sub(row.OnHand)
			if gap.Sign() <= 0 {
				continue
			}
			add(row.Part, today, gap, enums.DemandReorderLevel, row.Location)
		}
	}

	return reqs, nil
}

// issuedByPart nets the stock moves already issued against a work order.
// Issues are negative moves, so negating the sum yields issued quantity
// and reversals subtract themselves.
func issuedByPart(ctx context.Context, src SourceReader, orderNo string) (map[string]decimal.Decimal, error) {
	moves, err := src.IssuedStockMovesForWorkOrder(ctx, orderNo)
	if err != nil {
		return nil, apperrors.Storage(err, "getIssuedStockMovesForWO")
	}
	issued := make(map[string]decimal.Decimal, len(moves))
	for _, move := range moves {
		issued[move.Part] = issued[move.Part].Sub(move.Qty)
	}
	return issued, nil
}
