package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/enums"
)

// MrpRequirement is one time-phased demand row in a run's working set.
// Quantity holds the residual after allocation; OriginalQty keeps the
// inserted amount for the gross-requirements summary.
type MrpRequirement struct {
	ID            uint             `gorm:"column:id;primaryKey;autoIncrement"`
	RunID         uuid.UUID        `gorm:"column:run_id;type:uuid;not null;index:idx_req_run"`
	Part          string           `gorm:"column:part;size:20;not null;index:idx_req_part"`
	DateRequired  time.Time        `gorm:"column:date_required;type:date;not null"`
	Quantity      decimal.Decimal  `gorm:"column:quantity;type:numeric(14,4);not null"`
	OriginalQty   decimal.Decimal  `gorm:"column:original_qty;type:numeric(14,4);not null"`
	DemandType    enums.DemandType `gorm:"column:demand_type;size:8;not null"`
	OrderNo       string           `gorm:"column:order_no;size:20;not null"`
	DirectDemand  bool             `gorm:"column:direct_demand;not null"`
	WhereRequired string           `gorm:"column:where_required;size:20;not null"`
}

func (MrpRequirement) TableName() string { return "mrp_requirements" }
