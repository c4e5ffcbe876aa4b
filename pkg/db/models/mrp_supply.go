package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// MrpSupply is one scheduled receipt in a run's working set. DueDate is
// the physical date and is never changed by the engine; MrpDate starts
// equal to it and is moved earlier when the netter advises a reschedule.
type MrpSupply struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	RunID      uuid.UUID        `gorm:"column:run_id;type:uuid;not null;index:idx_sup_run"`
	Part       string           `gorm:"column:part;size:20;not null;index:idx_sup_part"`
	DueDate    time.Time        `gorm:"column:due_date;type:date;not null"`
	SupplyQty  decimal.Decimal  `gorm:"column:supply_qty;type:numeric(14,4);not null"`
	OrderType  enums.SupplyType `gorm:"column:order_type;size:8;not null"`
	OrderNo    string           `gorm:"column:order_no;size:20;not null"`
	MrpDate    time.Time        `gorm:"column:mrp_date;type:date;not null"`
	UpdateFlag bool             `gorm:"column:update_flag;not null;default:false"`
}

func (MrpSupply) TableName() string { return "mrp_supplies" }

// Rescheduled reports whether the netter issued an advisory date shift.
func (s MrpSupply) Rescheduled() bool {
	return !s.MrpDate.Equal(s.DueDate)
}
