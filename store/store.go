// Package store persists restaurants for the reference API. Three backends
// share the Store interface: an in-process Memory store, PostgreSQL through
// lib/pq and MongoDB through the official driver.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

// Store lists and inserts restaurants.
type Store interface {
	// List returns every restaurant, newest first.
	List(ctx context.Context) ([]restaurant.Restaurant, error)
	// Add inserts the input and returns the stored record with its new id.
	Add(ctx context.Context, in restaurant.Input) (restaurant.Restaurant, error)
}

// ErrNameRequired is returned by Add when the input has no name.
var ErrNameRequired = errors.New("restaurant name is required")

func prepare(in restaurant.Input, now time.Time) (restaurant.Restaurant, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return restaurant.Restaurant{}, ErrNameRequired
	}
	return in.Build(uuid.NewString(), now.UTC()), nil
}

// Driver names a storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
)

// Config selects and configures a backend for Open.
type Config struct {
	Driver          Driver
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Backend is an opened Store together with its readiness check.
type Backend struct {
	Store
	Driver Driver
	// Check reports whether the backend is reachable.
	Check probe.Func
	close func(ctx context.Context) error
}

// Close releases the backend's connections.
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the configured backend. An empty driver selects memory.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case "", DriverMemory:
		return openMemory(), nil
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	case DriverMongo:
		return openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
