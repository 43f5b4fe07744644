package quota

import (
	"fmt"

	"github.com/diatonic-ai/workbench/internal/catalog"
)

// Limits is the validated, immutable tier ceiling table.
type Limits struct {
	ceilings map[string]map[string]int64
}

// NewLimits validates the rows and builds the table. Ceilings must be
// non-negative or the Unlimited sentinel; duplicate (tier, resource)
// rows are rejected.
func NewLimits(rows []Limit) (*Limits, error) {
	l := &Limits{ceilings: make(map[string]map[string]int64)}
	for _, row := range rows {
		if row.Tier == "" || row.Resource == "" {
			return nil, fmt.Errorf("%w: empty tier or resource", ErrLimitsIntegrity)
		}
		if row.Ceiling < 0 && row.Ceiling != Unlimited {
			return nil, fmt.Errorf("%w: negative ceiling %d for (%s, %s)", ErrLimitsIntegrity, row.Ceiling, row.Tier, row.Resource)
		}
		byResource, ok := l.ceilings[row.Tier]
		if !ok {
			byResource = make(map[string]int64)
			l.ceilings[row.Tier] = byResource
		}
		if _, dup := byResource[row.Resource]; dup {
			return nil, fmt.Errorf("%w: duplicate row (%s, %s)", ErrLimitsIntegrity, row.Tier, row.Resource)
		}
		byResource[row.Resource] = row.Ceiling
	}
	return l, nil
}

// Ceiling returns the configured ceiling for the pair, if present.
func (l *Limits) Ceiling(tier, resource string) (int64, bool) {
	byResource, ok := l.ceilings[tier]
	if !ok {
		return 0, false
	}
	ceiling, ok := byResource[resource]
	return ceiling, ok
}

// DefaultLimits returns the built-in ceiling table. Enterprise has no
// metering on any resource.
func DefaultLimits() []Limit {
	type tierRow struct {
		tier        string
		agents      int64
		experiments int64
		apiCalls    int64
		storageMB   int64
		teamMembers int64
	}
	rows := []tierRow{
		{catalog.RoleFree, 3, 10, 100, 100, 1},
		{catalog.RoleBasic, 25, 100, 1_000, 1_024, 5},
		{catalog.RolePro, 100, 500, 10_000, 10_240, 20},
		{catalog.RoleExtreme, 500, 2_000, 100_000, 51_200, 100},
		{catalog.RoleEnterprise, Unlimited, Unlimited, Unlimited, Unlimited, Unlimited},
	}

	limits := make([]Limit, 0, len(rows)*5)
	for _, r := range rows {
		limits = append(limits,
			Limit{r.tier, ResourceAgentsCreated, r.agents},
			Limit{r.tier, ResourceExperimentsRun, r.experiments},
			Limit{r.tier, ResourceAPICallsDaily, r.apiCalls},
			Limit{r.tier, ResourceStorageMB, r.storageMB},
			Limit{r.tier, ResourceTeamMembers, r.teamMembers},
		)
	}
	return limits
}
