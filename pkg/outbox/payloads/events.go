package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunParameters snapshots the option flags a planning run executed with.
type RunParameters struct {
	UseMRPDemands          bool     `json:"useMrpDemands"`
	UseReorderLevelDemands bool     `json:"useReorderLevelDemands"`
	UseEOQ                 bool     `json:"useEoq"`
	UsePanSize             bool     `json:"usePanSize"`
	UseShrinkage           bool     `json:"useShrinkage"`
	LeewayDays             int      `json:"leewayDays"`
	Locations              []string `json:"locations,omitempty"`
}

// RunStartedEvent signals that a planning run began.
type RunStartedEvent struct {
	RunID      uuid.UUID     `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	Parameters RunParameters `json:"parameters"`
}

// RunSucceededEvent carries the headline numbers of a finished run.
type RunSucceededEvent struct {
	RunID             uuid.UUID       `json:"runId"`
	StartedAt         time.Time       `json:"startedAt"`
	FinishedAt        time.Time       `json:"finishedAt"`
	PlannedOrderCount int             `json:"plannedOrderCount"`
	TotalPlannedQty   decimal.Decimal `json:"totalPlannedQty"`
	Parameters        RunParameters   `json:"parameters"`
}

// RunFailedEvent reports an aborted run with its typed error code.
type RunFailedEvent struct {
	RunID      uuid.UUID     `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	ErrorCode  string        `json:"errorCode"`
	Error      string        `json:"error"`
	Parameters RunParameters `json:"parameters"`
}
