package mrp

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

func TestRun_SecondStartRejectedWhileRunning(t *testing.T) {
	h := newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})

	locked, err := h.lock.Acquire(context.Background())
	if err != nil || !locked {
		t.Fatalf("failed to pre-acquire lock: %v", err)
	}
	defer h.lock.Release(context.Background())

	_, err = h.service.Run(context.Background(), RunOptions{})
	if !apperrors.HasCode(err, apperrors.CodeAlreadyRunning) {
		t.Fatalf("expected AlreadyRunning, got %v", err)
	}
	if len(h.sink.failed) != 1 {
		t.Fatalf("failed event should fire, got %d", len(h.sink.failed))
	}
}

func TestRun_LockReleasedAfterCompletion(t *testing.T) {
	h := newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})

	if _, err := h.service.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if _, err := h.service.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("lock must be free for the next run: %v", err)
	}
}

func TestRun_InvalidOptionsRejected(t *testing.T) {
	h := newHarness(t, &fakeReader{})

	_, err := h.service.Run(context.Background(), RunOptions{LeewayDays: -2})
	if !apperrors.HasCode(err, apperrors.CodeConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if h.store.initCalls != 0 {
		t.Fatal("invalid options must not touch storage")
	}
}

func TestRun_CanceledContextReleasesWorkingSets(t *testing.T) {
	h := newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.Run(ctx, RunOptions{RetainAudit: true})
	if !apperrors.HasCode(err, apperrors.CodeCanceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
	if len(h.store.released) == 0 {
		t.Fatal("canceled run must release its working sets")
	}
	if len(h.sink.failed) != 1 {
		t.Fatal("canceled run must fire the failed event")
	}
}

func TestRun_StorageErrorWrapped(t *testing.T) {
	reader := &fakeReader{err: context.DeadlineExceeded}
	h := newHarness(t, reader)

	_, err := h.service.Run(context.Background(), RunOptions{})
	if !apperrors.HasCode(err, apperrors.CodeStorage) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if len(h.store.released) == 0 {
		t.Fatal("failed run must release its working sets")
	}
}

func TestRun_ReleaseOnSuccessUnlessRetained(t *testing.T) {
	h := newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})
	if _, err := h.service.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.released) == 0 {
		t.Fatal("default run must release its working sets")
	}

	h = newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})
	if _, err := h.service.Run(context.Background(), RunOptions{RetainAudit: true}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.released) != 0 {
		t.Fatal("retained run must keep its audit snapshot")
	}
}

func TestRun_LifecycleEventsFire(t *testing.T) {
	h := newHarness(t, &fakeReader{items: []models.Item{{Part: "A"}}})
	if _, err := h.service.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.sink.started) != 1 || len(h.sink.succeeded) != 1 || len(h.sink.failed) != 0 {
		t.Fatalf("events = started:%d succeeded:%d failed:%d, want 1/1/0",
			len(h.sink.started), len(h.sink.succeeded), len(h.sink.failed))
	}
	if h.store.parameters == nil {
		t.Fatal("audit parameters row must be written")
	}
}

func TestRun_WorkOrderComponentDemandNetOfIssues(t *testing.T) {
	woNo := "WO-9"
	h := newHarness(t, &fakeReader{
		items: []models.Item{{Part: "ASSY"}, {Part: "COMP"}},
		workOrders: []models.WorkOrder{{
			OrderNo:    woNo,
			Part:       "ASSY",
			QtyReqd:    dec(10),
			RequiredBy: d(2024, time.February, 20),
			Status:     enums.WorkOrderOpen,
			Components: []models.WorkOrderComponent{
				{WorkOrderNo: woNo, Part: "COMP", QtyPerUnit: dec(3)},
			},
		}},
		issued: map[string][]models.StockMove{
			woNo: {{Part: "COMP", Qty: dec(-12), WorkOrderNo: &woNo}},
		},
	})

	summary, err := h.service.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// component need 3·10 − 12 issued = 18; WO output supplies ASSY with 10
	var compLine *PartSummary
	for i := range summary.Parts {
		if summary.Parts[i].Part == "COMP" {
			compLine = &summary.Parts[i]
		}
	}
	if compLine == nil {
		t.Fatal("expected a summary line for COMP")
	}
	if !compLine.GrossRequirements.Equal(dec(18)) {
		t.Fatalf("COMP gross = %s, want 18", compLine.GrossRequirements)
	}
	if len(h.store.planned) != 1 || h.store.planned[0].Part != "COMP" || !h.store.planned[0].Quantity.Equal(dec(18)) {
		t.Fatalf("planned = %v, want COMP 18", h.store.planned)
	}
	if h.store.planned[0].DemandType != enums.DemandWorkOrder || h.store.planned[0].OrderNo != woNo {
		t.Fatalf("planned order trace = %+v", h.store.planned[0])
	}
}

func TestRun_ReorderTopUpsRespectLocationFilter(t *testing.T) {
	reader := &fakeReader{
		items: []models.Item{{Part: "A", ReorderLevel: dec(40)}},
		locStock: []LocationStock{
			{Part: "A", Location: "WH1", OnHand: dec(15), ReorderLevel: dec(40)},
			{Part: "A", Location: "WH2", OnHand: dec(5), ReorderLevel: dec(40)},
		},
	}
	h := newHarness(t, reader)

	summary, err := h.service.Run(context.Background(), RunOptions{
		UseReorderLevelDemands: true,
		Locations:              []string{"WH1"},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	var line *PartSummary
	for i := range summary.Parts {
		if summary.Parts[i].Part == "A" {
			line = &summary.Parts[i]
		}
	}
	if line == nil {
		t.Fatal("expected summary line for A")
	}
	// only WH1's gap of 25 counts; requirement lands on the run date
	if !line.GrossRequirements.Equal(dec(25)) {
		t.Fatalf("gross = %s, want 25 from WH1 only", line.GrossRequirements)
	}
	if len(h.store.requirements) != 1 {
		t.Fatalf("expected one requirement, got %d", len(h.store.requirements))
	}
	req := h.store.requirements[0]
	if req.DemandType != enums.DemandReorderLevel || !req.DateRequired.Equal(d(2024, time.January, 15)) {
		t.Fatalf("reorder requirement = %+v", req)
	}
}

func TestRun_MRPDemandsBehindFlag(t *testing.T) {
	reader := &fakeReader{
		items:   []models.Item{{Part: "A"}},
		demands: []models.MrpDemand{{Part: "A", Qty: dec(7), DueDate: d(2024, time.March, 1)}},
	}

	h := newHarness(t, reader)
	if _, err := h.service.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.requirements) != 0 {
		t.Fatal("mrp demands must stay out without the flag")
	}

	h = newHarness(t, reader)
	if _, err := h.service.Run(context.Background(), RunOptions{UseMRPDemands: true}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.store.requirements) != 1 || h.store.requirements[0].DemandType != enums.DemandMRP {
		t.Fatalf("expected one MRPD requirement, got %v", h.store.requirements)
	}
}

func TestRun_RepeatedRunsAreDeterministic(t *testing.T) {
	reader := func() *fakeReader {
		return &fakeReader{
			edges: []models.BomEdge{
				activeEdge("A", "B", 2),
				activeEdge("A", "C", 1),
				activeEdge("B", "C", 3),
			},
			items: []models.Item{
				{Part: "A", LeadTimeDays: 2},
				{Part: "B", LeadTimeDays: 1, EOQ: dec(50)},
				{Part: "C", LeadTimeDays: 4, PanSize: dec(10)},
			},
			onHand: map[string]decimal.Decimal{"B": dec(5), "C": dec(12)},
			salesOrders: []models.SalesOrderLine{
				soLine("900", "A", 10, d(2024, time.February, 20)),
				soLine("901", "A", 4, d(2024, time.February, 25)),
			},
		}
	}

	opts := RunOptions{UseEOQ: true, UsePanSize: true}

	h1 := newHarness(t, reader())
	if _, err := h1.service.Run(context.Background(), opts); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	h2 := newHarness(t, reader())
	if _, err := h2.service.Run(context.Background(), opts); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	if len(h1.store.planned) != len(h2.store.planned) {
		t.Fatalf("planned counts differ: %d vs %d", len(h1.store.planned), len(h2.store.planned))
	}
	for i := range h1.store.planned {
		a, b := h1.store.planned[i], h2.store.planned[i]
		if a.Part != b.Part || !a.Quantity.Equal(b.Quantity) || !a.DueDate.Equal(b.DueDate) || a.OrderNo != b.OrderNo {
			t.Fatalf("planned[%d] differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRun_PlannedQuantityCoversNetRequirements(t *testing.T) {
	h := newHarness(t, &fakeReader{
		edges: []models.BomEdge{activeEdge("A", "B", 2)},
		items: []models.Item{
			{Part: "A", EOQ: dec(40)},
			{Part: "B", ShrinkFactor: dec(20)},
		},
		salesOrders: []models.SalesOrderLine{soLine("950", "A", 25, d(2024, time.March, 10))},
	})

	summary, err := h.service.Run(context.Background(), RunOptions{UseEOQ: true, UseShrinkage: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	plannedByPart := map[string]decimal.Decimal{}
	for _, order := range h.store.planned {
		plannedByPart[order.Part] = plannedByPart[order.Part].Add(order.Quantity)
	}
	for _, line := range summary.Parts {
		if plannedByPart[line.Part].LessThan(line.NetRequirements) {
			t.Fatalf("planned %s < net %s for %s", plannedByPart[line.Part], line.NetRequirements, line.Part)
		}
		if !line.ProjectedBalance.Equal(line.ScheduledReceipts.Sub(line.GrossRequirements)) {
			t.Fatalf("projected balance identity broken for %s", line.Part)
		}
	}

	// explosion property: child demand equals parent planned qty · qtyPer
	var childGross decimal.Decimal
	for _, req := range h.store.requirements {
		if req.Part == "B" {
			childGross = childGross.Add(req.OriginalQty)
		}
	}
	if !childGross.Equal(plannedByPart["A"].Mul(dec(2))) {
		t.Fatalf("child demand %s, want parent planned %s · 2", childGross, plannedByPart["A"])
	}
}
