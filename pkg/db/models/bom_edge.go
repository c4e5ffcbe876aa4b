package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BomEdge is one parent→child line of the bill of materials. An edge is
// active when effective_from ≤ today < effective_to; inactive edges still
// participate in level assignment so low-level codes stay stable over time.
type BomEdge struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	ParentPart    string          `gorm:"column:parent_part;size:20;not null;index:idx_bom_parent"`
	ChildPart     string          `gorm:"column:child_part;size:20;not null;index:idx_bom_child"`
	QuantityPer   decimal.Decimal `gorm:"column:quantity_per;type:numeric(14,4);not null"`
	EffectiveFrom time.Time       `gorm:"column:effective_from;type:date;not null"`
	EffectiveTo   time.Time       `gorm:"column:effective_to;type:date;not null"`
}

func (BomEdge) TableName() string { return "bom_edges" }

// ActiveOn reports whether the edge is in effect on the given day.
func (e BomEdge) ActiveOn(day time.Time) bool {
	return !day.Before(e.EffectiveFrom) && day.Before(e.EffectiveTo)
}
