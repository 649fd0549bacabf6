package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/internal/seed"
)

type jobRecorder struct {
	task string
	errs []error
}

func (r *jobRecorder) ObserveJob(task string, err error) {
	r.task = task
	r.errs = append(r.errs, err)
}

type failingResetter struct{ err error }

func (f failingResetter) Reset(ctx context.Context) (seed.Report, error) {
	return seed.Report{}, f.err
}

func TestNewDemoResetTask(t *testing.T) {
	task, err := NewDemoResetTask("manual")
	require.NoError(t, err)
	assert.Equal(t, TaskDemoReset, task.Type())

	var payload DemoResetPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "manual", payload.Reason)
}

func TestDemoResetJobRestoresFixtures(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kv.KeyPickupRequests, "[]"))
	require.NoError(t, store.Set(ctx, kv.KeyUsers, "garbage"))

	rec := &jobRecorder{}
	job := &DemoResetJob{
		Seeder:  seed.NewSeeder(store, nil, nil, seed.Config{}),
		Metrics: rec,
	}
	task, err := NewDemoResetTask("test")
	require.NoError(t, err)

	require.NoError(t, job.Handle(ctx, task))
	assert.Equal(t, TaskDemoReset, rec.task)
	require.Len(t, rec.errs, 1)
	assert.NoError(t, rec.errs[0])

	var pickups []json.RawMessage
	present, err := kv.ReadJSON(ctx, store, kv.KeyPickupRequests, &pickups)
	require.NoError(t, err)
	require.True(t, present)
	assert.Len(t, pickups, len(seed.SamplePickups()))
}

func TestDemoResetJobReportsFailure(t *testing.T) {
	rec := &jobRecorder{}
	boom := errors.New("store down")
	job := &DemoResetJob{Seeder: failingResetter{err: boom}, Metrics: rec}

	err := job.Handle(context.Background(), asynq.NewTask(TaskDemoReset, nil))
	require.ErrorIs(t, err, boom)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], boom)
}

func TestDemoResetJobSkipsRetryOnBadPayload(t *testing.T) {
	job := &DemoResetJob{Seeder: failingResetter{}}
	err := job.Handle(context.Background(), asynq.NewTask(TaskDemoReset, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDemoResetJobNotConfigured(t *testing.T) {
	var job *DemoResetJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskDemoReset, nil)))
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, QueueDefault, body.Queue)
	assert.False(t, body.Enabled)
}

func TestNewWorkerRejectsBadCron(t *testing.T) {
	task, err := NewDemoResetTask("schedule")
	require.NoError(t, err)
	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	require.Error(t, err)
}
