package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMove is a signed inventory movement. Positive moves sum to on-hand
// stock; moves tagged with a work order are component issues against it.
type StockMove struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Part        string          `gorm:"column:part;size:20;not null;index:idx_sm_part"`
	Location    string          `gorm:"column:location;size:20;not null;index:idx_sm_location"`
	Qty         decimal.Decimal `gorm:"column:qty;type:numeric(14,4);not null"`
	MoveDate    time.Time       `gorm:"column:move_date;type:date;not null"`
	WorkOrderNo *string         `gorm:"column:work_order_no;size:20;index:idx_sm_wo"`
}

func (StockMove) TableName() string { return "stock_moves" }
