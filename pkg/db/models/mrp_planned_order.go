package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// MrpPlannedOrder is an advisory replenishment order emitted by the
// netter. Planned orders feed lower-level requirements, never supplies,
// within the run that produced them.
type MrpPlannedOrder struct {
	ID         uint             `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      uuid.UUID        `gorm:"column:run_id;type:uuid;not null;index:idx_po_run"`
	Part       string           `gorm:"column:part;size:20;not null;index:idx_plan_part"`
	DueDate    time.Time        `gorm:"column:due_date;type:date;not null"`
	Quantity   decimal.Decimal  `gorm:"column:quantity;type:numeric(14,4);not null"`
	DemandType enums.DemandType `gorm:"column:demand_type;size:8;not null"`
	OrderNo    string           `gorm:"column:order_no;size:20;not null"`
}

func (MrpPlannedOrder) TableName() string { return "mrp_planned_orders" }
