package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// WorkOrder is an internal make order: its output is supply for the
// ordered part, its component lines are demand for the children.
type WorkOrder struct {
	OrderNo     string                `gorm:"column:order_no;size:20;primaryKey"`
	Part        string                `gorm:"column:part;size:20;not null;index:idx_wo_part"`
	QtyReqd     decimal.Decimal       `gorm:"column:qty_reqd;type:numeric(14,4);not null"`
	QtyReceived decimal.Decimal       `gorm:"column:qty_received;type:numeric(14,4);not null;default:0"`
	RequiredBy  time.Time             `gorm:"column:required_by;type:date;not null"`
	Status      enums.WorkOrderStatus `gorm:"column:status;size:16;not null;default:'open'"`

	Components []WorkOrderComponent `gorm:"foreignKey:WorkOrderNo;references:OrderNo"`
}

func (WorkOrder) TableName() string { return "work_orders" }

// OutstandingOutput returns the quantity still expected from the order.
func (w WorkOrder) OutstandingOutput() decimal.Decimal {
	return w.QtyReqd.Sub(w.QtyReceived)
}

// WorkOrderComponent is one required child part per unit of work-order output.
type WorkOrderComponent struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	WorkOrderNo string          `gorm:"column:work_order_no;size:20;not null;index:idx_woc_order"`
	Part        string          `gorm:"column:part;size:20;not null;index:idx_woc_part"`
	QtyPerUnit  decimal.Decimal `gorm:"column:qty_per_unit;type:numeric(14,4);not null"`
}

func (WorkOrderComponent) TableName() string { return "work_order_components" }
