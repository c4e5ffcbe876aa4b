package mrp

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

func soLine(orderNo, part string, qty int64, due time.Time) models.SalesOrderLine {
	return models.SalesOrderLine{
		OrderNo:    orderNo,
		Part:       part,
		QtyOrdered: dec(qty),
		DueDate:    due,
		Status:     enums.SalesOrderOpen,
	}
}

func TestRun_ExactCoverProducesNoPlannedOrders(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A"}},
		onHand:      map[string]decimal.Decimal{"A": dec(50)},
		salesOrders: []models.SalesOrderLine{soLine("100", "A", 50, d(2024, time.February, 1))},
	})

	summary, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 0 {
		t.Fatalf("expected no planned orders, got %v", h.store.planned)
	}
	if len(summary.Parts) != 1 {
		t.Fatalf("expected one summary line, got %d", len(summary.Parts))
	}
	line := summary.Parts[0]
	if line.Part != "A" {
		t.Fatalf("summary part = %s, want A", line.Part)
	}
	if !line.GrossRequirements.Equal(dec(50)) || !line.ScheduledReceipts.Equal(dec(50)) {
		t.Fatalf("gross/scheduled = %s/%s, want 50/50", line.GrossRequirements, line.ScheduledReceipts)
	}
	if line.ProjectedBalance.Sign() != 0 || line.NetRequirements.Sign() != 0 {
		t.Fatalf("projected/net = %s/%s, want 0/0", line.ProjectedBalance, line.NetRequirements)
	}
}

func TestRun_ShortageOffsetsByLeadTime(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A", LeadTimeDays: 5}},
		onHand:      map[string]decimal.Decimal{"A": dec(20)},
		salesOrders: []models.SalesOrderLine{soLine("101", "A", 50, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 1 {
		t.Fatalf("expected one planned order, got %d", len(h.store.planned))
	}
	order := h.store.planned[0]
	if order.Part != "A" || !order.Quantity.Equal(dec(30)) {
		t.Fatalf("planned = %s %s, want A 30", order.Part, order.Quantity)
	}
	if !order.DueDate.Equal(d(2024, time.February, 5)) {
		t.Fatalf("due date = %s, want 2024-02-05", order.DueDate)
	}
	if order.DemandType != enums.DemandSalesOrder || order.OrderNo != "101" {
		t.Fatalf("source trace lost: %+v", order)
	}
}

func TestRun_ShrinkageInflatesOnce(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A", ShrinkFactor: dec(10)}},
		salesOrders: []models.SalesOrderLine{soLine("102", "A", 90, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{UseShrinkage: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 1 {
		t.Fatalf("expected one planned order, got %d", len(h.store.planned))
	}
	// 90 · 100 / (100 − 10) rounded to 2 dp
	if !h.store.planned[0].Quantity.Equal(dec(100)) {
		t.Fatalf("planned qty = %s, want 100", h.store.planned[0].Quantity)
	}
}

func TestRun_EOQCarryAbsorbsLaterRequirement(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items: []models.Item{{Part: "A", EOQ: dec(100)}},
		salesOrders: []models.SalesOrderLine{
			soLine("103", "A", 30, d(2024, time.February, 1)),
			soLine("104", "A", 40, d(2024, time.February, 5)),
		},
	})

	_, err := h.service.Run(context.Background(), RunOptions{UseEOQ: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 1 {
		t.Fatalf("expected carry to absorb the second requirement, got %d orders", len(h.store.planned))
	}
	order := h.store.planned[0]
	if !order.Quantity.Equal(dec(100)) || !order.DueDate.Equal(d(2024, time.February, 1)) {
		t.Fatalf("planned = %s @ %s, want 100 @ 2024-02-01", order.Quantity, order.DueDate)
	}
}

func TestRun_TwoLevelExplosion(t *testing.T) {
	h := newHarness(t, &fakeReader{
		edges: []models.BomEdge{activeEdge("A", "B", 2)},
		items: []models.Item{
			{Part: "A", LeadTimeDays: 3},
			{Part: "B", LeadTimeDays: 1},
		},
		salesOrders: []models.SalesOrderLine{soLine("200", "A", 10, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 2 {
		t.Fatalf("expected planned orders for A and B, got %d", len(h.store.planned))
	}
	first, second := h.store.planned[0], h.store.planned[1]
	if first.Part != "A" || !first.Quantity.Equal(dec(10)) || !first.DueDate.Equal(d(2024, time.February, 7)) {
		t.Fatalf("planned[0] = %+v, want A 10 @ 2024-02-07", first)
	}
	if second.Part != "B" || !second.Quantity.Equal(dec(20)) || !second.DueDate.Equal(d(2024, time.February, 6)) {
		t.Fatalf("planned[1] = %+v, want B 20 @ 2024-02-06", second)
	}

	var dependent *models.MrpRequirement
	for i := range h.store.requirements {
		req := &h.store.requirements[i]
		if req.Part == "B" {
			dependent = req
			break
		}
	}
	if dependent == nil {
		t.Fatal("expected a dependent requirement for B")
	}
	if dependent.DirectDemand {
		t.Fatal("dependent demand must not be flagged direct")
	}
	if dependent.WhereRequired != "A" || dependent.OrderNo != "200" || dependent.DemandType != enums.DemandSalesOrder {
		t.Fatalf("dependent trace = %+v, want whereRequired=A orderNo=200 type=SO", dependent)
	}
	if !dependent.DateRequired.Equal(d(2024, time.February, 7)) || !dependent.OriginalQty.Equal(dec(20)) {
		t.Fatalf("dependent = %s @ %s, want 20 @ 2024-02-07", dependent.OriginalQty, dependent.DateRequired)
	}
}

func TestRun_AdvisoryRescheduleWithinLeeway(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items: []models.Item{{Part: "A"}},
		purchases: []models.PurchaseOrderLine{{
			OrderNo:      "500",
			Part:         "A",
			QtyOrdered:   dec(50),
			DeliveryDate: d(2024, time.February, 15),
			Status:       enums.PurchaseOrderApproved,
		}},
		salesOrders: []models.SalesOrderLine{soLine("300", "A", 50, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{LeewayDays: 2})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(h.store.planned) != 0 {
		t.Fatalf("requirement is covered; expected no planned orders, got %v", h.store.planned)
	}
	if len(h.store.supplies) != 1 {
		t.Fatalf("expected one supply row, got %d", len(h.store.supplies))
	}
	sup := h.store.supplies[0]
	if !sup.MrpDate.Equal(d(2024, time.February, 10)) {
		t.Fatalf("mrp date = %s, want advisory 2024-02-10", sup.MrpDate)
	}
	if !sup.DueDate.Equal(d(2024, time.February, 15)) {
		t.Fatalf("physical due date must not move, got %s", sup.DueDate)
	}
	if !sup.UpdateFlag {
		t.Fatal("update flag should mark the advisory")
	}
}

func TestRun_LargeLeewayEliminatesAdvisories(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items: []models.Item{{Part: "A"}},
		purchases: []models.PurchaseOrderLine{{
			OrderNo:      "501",
			Part:         "A",
			QtyOrdered:   dec(50),
			DeliveryDate: d(2024, time.February, 15),
			Status:       enums.PurchaseOrderApproved,
		}},
		salesOrders: []models.SalesOrderLine{soLine("301", "A", 50, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{LeewayDays: 30})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	sup := h.store.supplies[0]
	if sup.UpdateFlag || !sup.MrpDate.Equal(sup.DueDate) {
		t.Fatalf("no advisory expected with ample leeway: %+v", sup)
	}
}

func TestRun_SentinelStockConsumedBeforeDatedSupply(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:  []models.Item{{Part: "A"}},
		onHand: map[string]decimal.Decimal{"A": dec(30)},
		purchases: []models.PurchaseOrderLine{{
			OrderNo:      "502",
			Part:         "A",
			QtyOrdered:   dec(30),
			DeliveryDate: d(2024, time.February, 20),
			Status:       enums.PurchaseOrderPending,
		}},
		salesOrders: []models.SalesOrderLine{soLine("302", "A", 30, d(2024, time.February, 10))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{LeewayDays: 365})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, sup := range h.store.supplies {
		switch sup.OrderType {
		case enums.SupplyOnHand:
			if sup.SupplyQty.Sign() != 0 {
				t.Fatalf("on-hand should be fully consumed first, residual %s", sup.SupplyQty)
			}
		case enums.SupplyPurchaseOrder:
			if !sup.SupplyQty.Equal(dec(30)) {
				t.Fatalf("dated supply should be untouched, residual %s", sup.SupplyQty)
			}
		}
	}
}

func TestRun_PanSizeRoundsUpToMultiple(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A", PanSize: dec(25)}},
		salesOrders: []models.SalesOrderLine{soLine("600", "A", 60, d(2024, time.March, 1))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{UsePanSize: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.planned) != 1 || !h.store.planned[0].Quantity.Equal(dec(75)) {
		t.Fatalf("planned = %v, want single order of 75", h.store.planned)
	}
}

func TestRun_PanSizeMultipleStaysItself(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A", PanSize: dec(25)}},
		salesOrders: []models.SalesOrderLine{soLine("601", "A", 75, d(2024, time.March, 1))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{UsePanSize: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.planned) != 1 || !h.store.planned[0].Quantity.Equal(dec(75)) {
		t.Fatalf("pan rounding must be idempotent on multiples, got %v", h.store.planned)
	}
}

func TestRun_IdlePartProducesNothing(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A"}, {Part: "IDLE"}},
		salesOrders: []models.SalesOrderLine{soLine("700", "A", 10, d(2024, time.March, 1))},
	})

	summary, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for _, line := range summary.Parts {
		if line.Part == "IDLE" {
			t.Fatal("idle part must not get a summary line")
		}
	}
}

func TestRun_PastDuePlannedDateIsNotAnError(t *testing.T) {
	h := newHarness(t, &fakeReader{
		items:       []models.Item{{Part: "A", LeadTimeDays: 60}},
		salesOrders: []models.SalesOrderLine{soLine("800", "A", 5, d(2024, time.January, 20))},
	})

	_, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("impossible-to-meet demand must surface, not fail: %v", err)
	}
	if len(h.store.planned) != 1 {
		t.Fatalf("expected the planned order, got %d", len(h.store.planned))
	}
	if got := h.store.planned[0].DueDate; !got.Equal(d(2023, time.November, 21)) {
		t.Fatalf("past due date surfaced verbatim: got %s", got)
	}
}
