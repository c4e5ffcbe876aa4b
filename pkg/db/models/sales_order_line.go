package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// SalesOrderLine is an open customer demand line.
type SalesOrderLine struct {
	ID          uint                   `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNo     string                 `gorm:"column:order_no;size:20;not null;index:idx_so_order"`
	Part        string                 `gorm:"column:part;size:20;not null;index:idx_so_part"`
	QtyOrdered  decimal.Decimal        `gorm:"column:qty_ordered;type:numeric(14,4);not null"`
	QtyInvoiced decimal.Decimal        `gorm:"column:qty_invoiced;type:numeric(14,4);not null;default:0"`
	DueDate     time.Time              `gorm:"column:due_date;type:date;not null"`
	Status      enums.SalesOrderStatus `gorm:"column:status;size:16;not null;default:'open'"`
}

func (SalesOrderLine) TableName() string { return "sales_order_lines" }

// Outstanding returns the uninvoiced remainder of the line.
func (l SalesOrderLine) Outstanding() decimal.Decimal {
	return l.QtyOrdered.Sub(l.QtyInvoiced)
}
