package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// PurchaseOrderLine is incoming bought supply.
type PurchaseOrderLine struct {
	ID           uint                      `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNo      string                    `gorm:"column:order_no;size:20;not null;index:idx_po_order"`
	Part         string                    `gorm:"column:part;size:20;not null;index:idx_po_part"`
	QtyOrdered   decimal.Decimal           `gorm:"column:qty_ordered;type:numeric(14,4);not null"`
	QtyReceived  decimal.Decimal           `gorm:"column:qty_received;type:numeric(14,4);not null;default:0"`
	DeliveryDate time.Time                 `gorm:"column:delivery_date;type:date;not null"`
	Status       enums.PurchaseOrderStatus `gorm:"column:status;size:16;not null;default:'pending'"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_lines" }

// Outstanding returns the unreceived remainder of the line.
func (l PurchaseOrderLine) Outstanding() decimal.Decimal {
	return l.QtyOrdered.Sub(l.QtyReceived)
}
