// Package quota keeps per-day call counters for every model tier and rejects
// calls once a tier reaches its daily cap.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"go.uber.org/zap"
)

// StorageKey is the single key the ledger state lives under.
const StorageKey = "recruitai_quota_v1"

const (
	dateLayout  = "2006-01-02"
	maxAttempts = 16
)

var (
	// ErrNotFound is returned by stores when the key holds no value.
	ErrNotFound = errors.New("quota state not found")
	// ErrContention means the state kept changing under the ledger.
	ErrContention = errors.New("quota state changed concurrently too many times")
)

// Limits maps a tier to its daily cap.
type Limits map[ai.Tier]int

// DefaultLimits keeps the cheap tier two orders of magnitude above the expensive one.
var DefaultLimits = Limits{
	ai.TierFast: 1500,
	ai.TierDeep: 50,
}

// State is the persisted form of the ledger.
type State struct {
	Date   string          `json:"date"`
	Counts map[ai.Tier]int `json:"counts"`
}

// Store is a key-value store with an atomic compare-and-swap.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// CompareAndSwap writes next only if the stored value equals old.
	// A nil old means the key must be absent.
	CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error)
}

type Ledger struct {
	store  Store
	limits Limits
	key    string
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Ledger)

// WithClock replaces time.Now. The calendar date is taken in the clock's location.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithKey overrides StorageKey, e.g. to keep several ledgers in one store.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

// NewLedger builds a ledger over store. Tiers missing from limits use DefaultLimits.
func NewLedger(store Store, limits Limits, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("quota store is required")
	}

	merged := make(Limits, len(DefaultLimits))
	for _, tier := range ai.Tiers() {
		merged[tier] = DefaultLimits[tier]
		if v, ok := limits[tier]; ok {
			if v < 0 {
				return nil, fmt.Errorf("quota limit for %s tier must not be negative", tier)
			}
			merged[tier] = v
		}
	}

	l := &Ledger{
		store:  store,
		limits: merged,
		key:    StorageKey,
		now:    time.Now,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Limit returns the daily cap of tier.
func (l *Ledger) Limit(tier ai.Tier) (int, error) {
	limit, ok := l.limits[tier]
	if !ok {
		return 0, fmt.Errorf("unknown model tier %q", tier)
	}
	return limit, nil
}

// CheckAndConsume records one call for tier, or fails with a quota error
// without touching the stored state when the cap is reached.
func (l *Ledger) CheckAndConsume(ctx context.Context, tier ai.Tier) error {
	limit, err := l.Limit(tier)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, state, err := l.load(ctx)
		if err != nil {
			return err
		}

		if state.Counts[tier] >= limit {
			l.logger.Warn("daily quota reached",
				zap.String("tier", string(tier)),
				zap.Int("limit", limit),
				zap.String("date", state.Date),
			)
			return failure.QuotaExceeded(tier)
		}

		state.Counts[tier]++

		next, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal quota state: %w", err)
		}

		swapped, err := l.store.CompareAndSwap(ctx, l.key, raw, next)
		if err != nil {
			return fmt.Errorf("persist quota state: %w", err)
		}

		if swapped {
			l.logger.Debug("quota consumed",
				zap.String("tier", string(tier)),
				zap.Int("used", state.Counts[tier]),
				zap.Int("limit", limit),
			)
			return nil
		}

		l.logger.Debug("quota state changed concurrently, retrying", zap.Int("attempt", attempt+1))
	}

	return ErrContention
}

// Remaining returns how many calls are left today for tier. It never writes.
func (l *Ledger) Remaining(ctx context.Context, tier ai.Tier) (int, error) {
	limit, err := l.Limit(tier)
	if err != nil {
		return 0, err
	}

	_, state, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	left := limit - state.Counts[tier]
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Usage returns today's counters. It never writes.
func (l *Ledger) Usage(ctx context.Context) (State, error) {
	_, state, err := l.load(ctx)
	return state, err
}

func (l *Ledger) today() string {
	return l.now().Format(dateLayout)
}

// load returns the raw stored bytes (for compare-and-swap) and the state for today.
func (l *Ledger) load(ctx context.Context) ([]byte, State, error) {
	today := l.today()
	fresh := State{Date: today, Counts: make(map[ai.Tier]int, len(l.limits))}
	for tier := range l.limits {
		fresh.Counts[tier] = 0
	}

	raw, err := l.store.Get(ctx, l.key)
	if errors.Is(err, ErrNotFound) {
		return nil, fresh, nil
	}
	if err != nil {
		return nil, State{}, fmt.Errorf("read quota state: %w", err)
	}

	var stored State
	if err := json.Unmarshal(raw, &stored); err != nil {
		l.logger.Warn("discarding unreadable quota state", zap.Error(err))
		return raw, fresh, nil
	}

	if stored.Date != today {
		return raw, fresh, nil
	}

	for tier := range l.limits {
		fresh.Counts[tier] = stored.Counts[tier]
	}

	return raw, fresh, nil
}
