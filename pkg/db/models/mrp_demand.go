package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MrpDemand is a manually maintained forecast demand record, included in
// a run only when the useMrpDemands option is set.
type MrpDemand struct {
	ID      uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Part    string          `gorm:"column:part;size:20;not null;index:idx_md_part"`
	Qty     decimal.Decimal `gorm:"column:qty;type:numeric(14,4);not null"`
	DueDate time.Time       `gorm:"column:due_date;type:date;not null"`
}

func (MrpDemand) TableName() string { return "mrp_demands" }
