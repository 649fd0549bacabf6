package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ecopickup/ecopickup/internal/seed"
)

// Resetter clears and re-seeds the demo data.
type Resetter interface {
	Reset(ctx context.Context) (seed.Report, error)
}

// Recorder receives job results.
type Recorder interface {
	ObserveJob(task string, err error)
}

// DemoResetJob handles TaskDemoReset.
type DemoResetJob struct {
	Seeder  Resetter
	Logger  *slog.Logger
	Metrics Recorder
}

// Handle processes a demo reset task.
func (j *DemoResetJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Seeder == nil {
		return errors.New("demo reset: handler not configured")
	}
	var payload DemoResetPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("demo reset: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if j.Metrics != nil {
		defer func() { j.Metrics.ObserveJob(TaskDemoReset, err) }()
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting demo reset")
	report, err := j.Seeder.Reset(ctx)
	if err != nil {
		logger.Error("demo reset", slog.Any("error", err))
		return err
	}
	seeded := 0
	for _, s := range report.Slots {
		if s.Outcome == seed.OutcomeSeeded {
			seeded++
		}
	}
	logger.Info("demo reset complete", slog.Int("slots_seeded", seeded))
	return nil
}

func (j *DemoResetJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
