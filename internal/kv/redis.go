package kv

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL      = 10 * time.Second
	lockWait     = 5 * time.Second
	lockInterval = 50 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisStore persists values in Redis.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	lockWait time.Duration
}

// NewRedisStore wraps client. Keys are namespaced with prefix when non-empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, lockWait: lockWait}
}

// Get returns the value stored at key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set stores value at key without expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Lock acquires a lease on key using SET NX. The returned func releases the lease
// only if it is still owned by this caller.
func (s *RedisStore) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := s.key(LockKey(key))
	token := uuid.NewString()
	deadline := time.Now().Add(s.lockWait)
	for {
		ok, err := s.client.SetNX(ctx, lockKey, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{lockKey}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockInterval):
		}
	}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// LockKey builds the lock key guarding a collection.
func LockKey(key string) string {
	return key + ":lock"
}
