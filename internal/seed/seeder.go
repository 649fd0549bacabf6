// Package seed fills empty storage slots with deterministic demo records.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ecopickup/ecopickup/internal/kv"
)

// DefaultAccountThreshold is the largest users collection still treated as holding
// only bootstrap defaults.
const DefaultAccountThreshold = 3

// Outcome describes what happened to a slot during seeding.
type Outcome string

// Slot outcomes.
const (
	OutcomeSeeded    Outcome = "seeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// SlotResult reports a single slot. Records is the collection size left in the slot,
// or zero when it could not be read.
type SlotResult struct {
	Slot    string  `json:"slot"`
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
	Records int     `json:"records"`
}

// Report lists the slot results of one Seed or Reset call.
type Report struct {
	Slots []SlotResult `json:"slots"`
}

// Seeded reports whether any slot was written.
func (r Report) Seeded() bool {
	for _, s := range r.Slots {
		if s.Outcome == OutcomeSeeded {
			return true
		}
	}
	return false
}

// OnlyMalformed reports whether err, possibly joined, consists solely of
// kv.ErrMalformedStoredData failures. Such a Seed result still describes every slot.
func OnlyMalformed(err error) bool {
	if err == nil {
		return false
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, kv.ErrMalformedStoredData) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, kv.ErrMalformedStoredData)
}

// Recorder receives seeding outcomes.
type Recorder interface {
	ObserveSeed(slot, outcome string)
}

// Config tunes seeding heuristics.
type Config struct {
	// AccountThreshold: a users slot with at most this many records is re-seeded.
	// Nil means DefaultAccountThreshold.
	AccountThreshold *int
}

// Threshold returns a pointer to n for Config.AccountThreshold.
func Threshold(n int) *int {
	return &n
}

type slot struct {
	name    string
	key     string
	fixture func() (any, int)
	// qualifies reports whether a slot holding n records already has real data.
	qualifies func(n int) bool
}

// Seeder populates the pickup, points and users slots of a store.
type Seeder struct {
	store    kv.Store
	logger   *slog.Logger
	recorder Recorder
	slots    []slot
	locks    map[string]*sync.Mutex
}

// NewSeeder constructs a Seeder. logger and recorder may be nil.
func NewSeeder(store kv.Store, logger *slog.Logger, recorder Recorder, cfg Config) *Seeder {
	threshold := DefaultAccountThreshold
	if cfg.AccountThreshold != nil {
		threshold = *cfg.AccountThreshold
	}
	if threshold < 0 {
		threshold = 0
	}
	slots := []slot{
		{
			name:      "pickups",
			key:       kv.KeyPickupRequests,
			fixture:   func() (any, int) { v := SamplePickups(); return v, len(v) },
			qualifies: func(n int) bool { return n > 0 },
		},
		{
			name:      "points",
			key:       kv.KeyUserPoints,
			fixture:   func() (any, int) { v := SamplePoints(); return v, len(v) },
			qualifies: func(n int) bool { return n > 0 },
		},
		{
			name:      "users",
			key:       kv.KeyUsers,
			fixture:   func() (any, int) { v := SampleUsers(); return v, len(v) },
			qualifies: func(n int) bool { return n > threshold },
		},
	}
	locks := make(map[string]*sync.Mutex, len(slots))
	for _, s := range slots {
		locks[s.key] = &sync.Mutex{}
	}
	return &Seeder{store: store, logger: logger, recorder: recorder, slots: slots, locks: locks}
}

// Seed writes the sample collection into every slot that is absent, empty, or (for
// users) at or below the account threshold. Slots already holding data are left
// untouched. A slot whose content does not decode is skipped and reported through
// an error wrapping kv.ErrMalformedStoredData; the other slots are still processed.
func (s *Seeder) Seed(ctx context.Context) (Report, error) {
	var (
		report Report
		errs   []error
	)
	for _, sl := range s.slots {
		res, err := s.seedSlot(ctx, sl)
		report.Slots = append(report.Slots, res)
		s.observe(res, err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return report, errors.Join(errs...)
}

// Reset clears every slot and seeds again.
func (s *Seeder) Reset(ctx context.Context) (Report, error) {
	for _, sl := range s.slots {
		if err := s.withLock(ctx, sl.key, func() error {
			return s.store.Remove(ctx, sl.key)
		}); err != nil {
			return Report{}, fmt.Errorf("seed: reset %s: %w", sl.name, err)
		}
	}
	if s.logger != nil {
		s.logger.Info("sample data cleared")
	}
	return s.Seed(ctx)
}

func (s *Seeder) seedSlot(ctx context.Context, sl slot) (SlotResult, error) {
	res := SlotResult{Slot: sl.name, Key: sl.key}
	err := s.withLock(ctx, sl.key, func() error {
		var existing []json.RawMessage
		present, err := kv.ReadJSON(ctx, s.store, sl.key, &existing)
		if err != nil {
			if errors.Is(err, kv.ErrMalformedStoredData) {
				res.Outcome = OutcomeMalformed
			}
			return err
		}
		if present && sl.qualifies(len(existing)) {
			res.Outcome = OutcomeSkipped
			res.Records = len(existing)
			return nil
		}
		fixture, n := sl.fixture()
		if err := kv.WriteJSON(ctx, s.store, sl.key, fixture); err != nil {
			return err
		}
		res.Outcome = OutcomeSeeded
		res.Records = n
		return nil
	})
	if err != nil {
		if res.Outcome == "" {
			res.Outcome = OutcomeFailed
		}
		return res, fmt.Errorf("seed: %s: %w", sl.name, err)
	}
	return res, nil
}

// withLock runs fn inside the per-slot mutex and, when the store supports it, the
// store-wide lock for key.
func (s *Seeder) withLock(ctx context.Context, key string, fn func() error) error {
	mu := s.locks[key]
	mu.Lock()
	defer mu.Unlock()

	if locker, ok := s.store.(kv.Locker); ok {
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn()
}

func (s *Seeder) observe(res SlotResult, err error) {
	if s.recorder != nil {
		s.recorder.ObserveSeed(res.Slot, string(res.Outcome))
	}
	if s.logger == nil {
		return
	}
	attrs := []any{slog.String("slot", res.Slot), slog.String("outcome", string(res.Outcome)), slog.Int("records", res.Records)}
	if err != nil {
		s.logger.Warn("seed slot", append(attrs, slog.Any("error", err))...)
		return
	}
	s.logger.Info("seed slot", attrs...)
}
