package main

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/ecopickup/ecopickup/internal/app"
	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/jobs"
)

func TestAsyncResetsNeedSharedStore(t *testing.T) {
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	assert.Nil(t, asyncResets(&app.Config{StoreDriver: kv.DriverMemory}, client))
	assert.Nil(t, asyncResets(&app.Config{StoreDriver: kv.DriverRedis}, nil))
	assert.NotNil(t, asyncResets(&app.Config{StoreDriver: kv.DriverRedis}, client))
	assert.NotNil(t, asyncResets(&app.Config{StoreDriver: kv.DriverPostgres}, client))
}
