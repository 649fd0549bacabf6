package app

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/internal/platform/cache"
	"github.com/ecopickup/ecopickup/internal/platform/db"
)

// Backends holds the external connections a process opened.
type Backends struct {
	Redis *redis.Client
	Pool  *pgxpool.Pool
	Store kv.Store

	logger *slog.Logger
}

// OpenBackends connects Redis when needRedis is set or the store driver uses it, and
// Postgres when the store driver is postgres, then opens the key-value store.
func OpenBackends(ctx context.Context, cfg *Config, logger *slog.Logger, needRedis bool) (*Backends, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backends{logger: logger}
	if needRedis || cfg.StoreDriver == kv.DriverRedis {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		b.Redis = client
	}
	if cfg.StoreDriver == kv.DriverPostgres {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Pool = pool
	}
	store, err := kv.Open(ctx, kv.Options{
		Driver: cfg.StoreDriver,
		Prefix: cfg.StorePrefix,
		Redis:  b.Redis,
		Pool:   b.Pool,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = store
	logger.Info("store ready", slog.String("driver", cfg.StoreDriver))
	return b, nil
}

// Close releases the opened connections.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			b.logger.Warn("redis close", slog.Any("error", err))
		}
	}
}

// AsynqRedisOpts returns the asynq connection settings for cfg.
func AsynqRedisOpts(cfg *Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}
