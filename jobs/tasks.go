package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskQuotaResetPeriod resets usage counters on billing-period
	// rollover.
	TaskQuotaResetPeriod = "quota:reset_period"
)

// QuotaResetPayload names the metered resources whose counters roll
// over. An empty Resources slice means every known resource.
type QuotaResetPayload struct {
	Resources []string `json:"resources,omitempty"`
}

// NewQuotaResetTask constructs an Asynq task.
func NewQuotaResetTask(payload QuotaResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotaResetPeriod, data), nil
}
