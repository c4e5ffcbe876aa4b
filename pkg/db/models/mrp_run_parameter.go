package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MrpRunParameter is the audit row persisted once per planning run,
// recording the option flags the run executed with.
type MrpRunParameter struct {
	RunID                  uuid.UUID      `gorm:"column:run_id;type:uuid;primaryKey"`
	UseMRPDemands          string         `gorm:"column:use_mrp_demands;size:1;not null"`
	UseReorderLevelDemands string         `gorm:"column:use_reorder_demands;size:1;not null"`
	UseEOQ                 string         `gorm:"column:use_eoq;size:1;not null"`
	UsePanSize             string         `gorm:"column:use_pan_size;size:1;not null"`
	UseShrinkage           string         `gorm:"column:use_shrinkage;size:1;not null"`
	LeewayDays             int            `gorm:"column:leeway_days;not null"`
	Locations              pq.StringArray `gorm:"column:locations;type:text[]"`
	RunAt                  time.Time      `gorm:"column:run_at;not null"`
	CreatedAt              time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (MrpRunParameter) TableName() string { return "mrp_run_parameters" }
