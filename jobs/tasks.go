package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDemoReset clears and re-seeds the demo data.
	TaskDemoReset = "demo:reset"
)

// DemoResetPayload describes why a reset was requested.
type DemoResetPayload struct {
	Reason string `json:"reason"`
}

// NewDemoResetTask constructs an Asynq task for a demo reset.
func NewDemoResetTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(DemoResetPayload{Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("jobs: encode demo reset: %w", err)
	}
	return asynq.NewTask(TaskDemoReset, data, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}
