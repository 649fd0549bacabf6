package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Driver string
	Prefix string
	Redis  *redis.Client
	Pool   *pgxpool.Pool
}

// Open builds the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, errors.New("kv: redis driver requires a client")
		}
		return NewRedisStore(opts.Redis, opts.Prefix), nil
	case DriverPostgres:
		if opts.Pool == nil {
			return nil, errors.New("kv: postgres driver requires a pool")
		}
		store := NewPostgresStore(opts.Pool, opts.Prefix)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", opts.Driver)
	}
}
