package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the item-master record planning attributes are resolved from.
type Item struct {
	Part         string          `gorm:"column:part;size:20;primaryKey"`
	Description  string          `gorm:"column:description"`
	LeadTimeDays int             `gorm:"column:lead_time_days;not null;default:0"`
	EOQ          decimal.Decimal `gorm:"column:eoq;type:numeric(14,4);not null;default:0"`
	PanSize      decimal.Decimal `gorm:"column:pan_size;type:numeric(14,4);not null;default:0"`
	ShrinkFactor decimal.Decimal `gorm:"column:shrink_factor;type:numeric(5,2);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"column:reorder_level;type:numeric(14,4);not null;default:0"`
	Discontinued bool            `gorm:"column:discontinued;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Item) TableName() string { return "items" }

// SupplierItem links a part to a supplier; the preferred record can
// override the item-master lead time.
type SupplierItem struct {
	Part         string `gorm:"column:part;size:20;primaryKey"`
	SupplierID   string `gorm:"column:supplier_id;size:20;primaryKey"`
	LeadTimeDays int    `gorm:"column:lead_time_days;not null;default:0"`
	Preferred    bool   `gorm:"column:preferred;not null;default:false"`
}

func (SupplierItem) TableName() string { return "supplier_items" }
