package mrp

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
)

// PartSummary is one part's line in the run report. ProjectedBalance is
// total supplies minus total requirements and goes negative when demand
// outruns supply.
type PartSummary struct {
	Part              string          `json:"part"`
	GrossRequirements decimal.Decimal `json:"grossRequirements"`
	ScheduledReceipts decimal.Decimal `json:"scheduledReceipts"`
	ProjectedBalance  decimal.Decimal `json:"projectedBalance"`
	NetRequirements   decimal.Decimal `json:"netRequirements"`
	FirstPlannedQty   decimal.Decimal `json:"firstPlannedQty"`
	FirstPlannedDate  *time.Time      `json:"firstPlannedDate,omitempty"`
}

// RunSummary is the caller-facing result of a planning run.
type RunSummary struct {
	RunID             uuid.UUID       `json:"runId"`
	StartedAt         time.Time       `json:"startedAt"`
	FinishedAt        time.Time       `json:"finishedAt"`
	RunTime           time.Duration   `json:"runTime"`
	Options           RunOptions      `json:"options"`
	PlannedOrderCount int             `json:"plannedOrderCount"`
	TotalPlannedQty   decimal.Decimal `json:"totalPlannedQty"`
	Parts             []PartSummary   `json:"parts"`
}

// buildSummary assembles the report from the netter's accumulators.
// Parts that saw neither requirements nor supplies get no line.
func buildSummary(n *netter, planned []models.MrpPlannedOrder) ([]PartSummary, int, decimal.Decimal) {
	seen := make(map[string]struct{}, len(n.gross)+len(n.sched))
	for part := range n.gross {
		seen[part] = struct{}{}
	}
	for part := range n.sched {
		seen[part] = struct{}{}
	}
	parts := make([]string, 0, len(seen))
	for part := range seen {
		parts = append(parts, part)
	}
	sort.Strings(parts)

	firstQty := make(map[string]decimal.Decimal)
	firstDate := make(map[string]time.Time)
	totalQty := decimal.Zero
	for _, order := range planned {
		totalQty = totalQty.Add(order.Quantity)
		if existing, ok := firstDate[order.Part]; !ok || order.DueDate.Before(existing) {
			firstDate[order.Part] = order.DueDate
			firstQty[order.Part] = order.Quantity
		}
	}

	summaries := make([]PartSummary, 0, len(parts))
	for _, part := range parts {
		line := PartSummary{
			Part:              part,
			GrossRequirements: n.gross[part],
			ScheduledReceipts: n.sched[part],
			ProjectedBalance:  n.sched[part].Sub(n.gross[part]),
			NetRequirements:   n.net[part],
			FirstPlannedQty:   firstQty[part],
		}
		if date, ok := firstDate[part]; ok {
			d := date
			line.FirstPlannedDate = &d
		}
		summaries = append(summaries, line)
	}
	return summaries, len(planned), totalQty
}
