// Package kv provides the string-keyed storage used for pickup, points and account
// collections, with in-memory, Redis and PostgreSQL backends.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Well-known collection keys.
const (
	KeyPickupRequests = "pickup-requests"
	KeyUserPoints     = "user-points"
	KeyUsers          = "users"
)

var (
	// ErrMalformedStoredData indicates stored content exists but cannot be decoded.
	ErrMalformedStoredData = errors.New("kv: malformed stored data")
	// ErrLockNotAcquired is returned when a lock stays held past the wait budget.
	ErrLockNotAcquired = errors.New("kv: lock not acquired")
)

// Store is a synchronous string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Locker is implemented by stores able to provide a critical section shared across
// processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ReadJSON decodes the collection stored at key into dest. It reports false when the
// key is absent or holds only whitespace. Undecodable content yields an error
// wrapping ErrMalformedStoredData.
func ReadJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("%w: key %s: %v", ErrMalformedStoredData, key, err)
	}
	return true, nil
}

// WriteJSON encodes value and stores it at key.
func WriteJSON(ctx context.Context, store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}
