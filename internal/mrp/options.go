package mrp

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/mrpworks-backend/pkg/config"
	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

// locationWildcard disables location filtering when present in Locations.
const locationWildcard = "All"

// RunOptions are the recognized options for a single planning run.
type RunOptions struct {
	UseMRPDemands          bool
	UseReorderLevelDemands bool
	UseEOQ                 bool
	UsePanSize             bool
	UseShrinkage           bool
	LeewayDays             int
	Locations              []string
	RetainAudit            bool
}

// OptionsFromConfig maps the configured planning defaults onto RunOptions.
func OptionsFromConfig(cfg config.PlanningConfig) RunOptions {
	return RunOptions{
		UseMRPDemands:          cfg.UseMRPDemands,
		UseReorderLevelDemands: cfg.UseReorderLevelDemands,
		UseEOQ:                 cfg.UseEOQ,
		UsePanSize:             cfg.UsePanSize,
		UseShrinkage:           cfg.UseShrinkage,
		LeewayDays:             cfg.LeewayDays,
		Locations:              cfg.Locations,
		RetainAudit:            cfg.RetainAudit,
	}
}

// Validate rejects option combinations the engine cannot run with.
func (o RunOptions) Validate() error {
	if o.LeewayDays < 0 {
		return apperrors.Config("leewayDays", "must be zero or positive")
	}
	for _, loc := range o.Locations {
		if strings.TrimSpace(loc) == "" {
			return apperrors.Config("locations", "blank location in filter")
		}
	}
	return nil
}

// LocationFilter returns the effective location filter: nil disables
// filtering (empty set or the wildcard entry).
func (o RunOptions) LocationFilter() []string {
	if len(o.Locations) == 0 {
		return nil
	}
	for _, loc := range o.Locations {
		if strings.EqualFold(loc, locationWildcard) {
			return nil
		}
	}
	return o.Locations
}

// AuditRow snapshots the options as the per-run parameters record.
func (o RunOptions) AuditRow(runID uuid.UUID, runAt time.Time) models.MrpRunParameter {
	return models.MrpRunParameter{
		RunID:                  runID,
		UseMRPDemands:          yn(o.UseMRPDemands),
		UseReorderLevelDemands: yn(o.UseReorderLevelDemands),
		UseEOQ:                 yn(o.UseEOQ),
		UsePanSize:             yn(o.UsePanSize),
		UseShrinkage:           yn(o.UseShrinkage),
		LeewayDays:             o.LeewayDays,
		Locations:              pq.StringArray(o.Locations),
		RunAt:                  runAt,
	}
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
