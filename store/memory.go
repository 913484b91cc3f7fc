package store

import (
	"context"
	"sync"
	"time"

	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

// Memory is a mutex-guarded in-process Store. It is the default backend of
// the reference server and loses its contents on restart.
type Memory struct {
	mu          sync.RWMutex
	restaurants []restaurant.Restaurant
	now         func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSeed preloads restaurants, oldest first.
func WithSeed(restaurants ...restaurant.Restaurant) MemoryOption {
	return func(m *Memory) {
		m.restaurants = append(m.restaurants, restaurants...)
	}
}

// NewMemory returns an empty Memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// List returns a copy of the stored restaurants, newest first.
func (m *Memory) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]restaurant.Restaurant, 0, len(m.restaurants))
	for i := len(m.restaurants) - 1; i >= 0; i-- {
		out = append(out, m.restaurants[i])
	}
	return out, nil
}

// Add stores the input under a fresh UUID.
func (m *Memory) Add(ctx context.Context, in restaurant.Input) (restaurant.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return restaurant.Restaurant{}, err
	}

	rec, err := prepare(in, m.now())
	if err != nil {
		return restaurant.Restaurant{}, err
	}

	m.mu.Lock()
	m.restaurants = append(m.restaurants, rec)
	m.mu.Unlock()
	return rec, nil
}

// Len reports how many restaurants are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.restaurants)
}

func openMemory() *Backend {
	return &Backend{
		Store:  NewMemory(),
		Driver: DriverMemory,
		Check: probe.NewPingProbe("memory", func(ctx context.Context) error {
			return ctx.Err()
		}),
	}
}
