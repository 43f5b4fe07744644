package quota

import (
	"errors"
	"time"
)

// Unlimited is the ceiling sentinel for tiers with no quota.
const Unlimited int64 = -1

// Metered resource names.
const (
	ResourceAgentsCreated  = "agents_created"
	ResourceExperimentsRun = "experiments_run"
	ResourceAPICallsDaily  = "api_calls_daily"
	ResourceStorageMB      = "storage_mb"
	ResourceTeamMembers    = "team_members"
)

// Limit is one row of the tier ceiling table.
type Limit struct {
	Tier     string
	Resource string
	Ceiling  int64
}

// Usage is the per-user counter state for one resource.
type Usage struct {
	Count   int64
	ResetAt time.Time
}

var (
	// ErrNegativeQuota indicates an increment that would drive the
	// counter below zero. The counter is left unchanged.
	ErrNegativeQuota = errors.New("quota: increment would drive counter negative")
	// ErrUpdateConflict indicates concurrent modification exhausted
	// the retry budget. Callers should re-read state and retry the
	// whole operation.
	ErrUpdateConflict = errors.New("quota: concurrent update conflict")
	// ErrLimitsIntegrity indicates an invalid ceiling table. Fatal at
	// startup.
	ErrLimitsIntegrity = errors.New("quota: limits integrity violation")
)
