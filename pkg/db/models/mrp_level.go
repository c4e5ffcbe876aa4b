package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MrpLevel records a part's low-level code and the planning attributes
// resolved for it at the start of a run.
type MrpLevel struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RunID        uuid.UUID       `gorm:"column:run_id;type:uuid;not null;index:idx_lvl_run"`
	Part         string          `gorm:"column:part;size:20;not null;index:idx_lvl_part"`
	LLC          int             `gorm:"column:llc;not null"`
	LeadTimeDays int             `gorm:"column:lead_time_days;not null"`
	PanSize      decimal.Decimal `gorm:"column:pan_size;type:numeric(14,4);not null"`
	ShrinkFactor decimal.Decimal `gorm:"column:shrink_factor;type:numeric(5,2);not null"`
	EOQ          decimal.Decimal `gorm:"column:eoq;type:numeric(14,4);not null"`
}

func (MrpLevel) TableName() string { return "mrp_levels" }
