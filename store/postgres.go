package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS restaurants (
	id           UUID PRIMARY KEY,
	name         TEXT NOT NULL,
	cuisine      TEXT,
	city         TEXT,
	address      TEXT,
	lat          DOUBLE PRECISION,
	lng          DOUBLE PRECISION,
	booking_link TEXT,
	social_link  TEXT,
	notes        TEXT,
	is_visited   BOOLEAN NOT NULL DEFAULT FALSE,
	rating       INTEGER,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

const restaurantColumns = `id, name, cuisine, city, address, lat, lng, booking_link,
	social_link, notes, is_visited, rating, created_at, updated_at`

// Postgres stores restaurants in a PostgreSQL table named restaurants.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres wraps an open database handle. Call EnsureSchema before first use
// against an empty database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// EnsureSchema creates the restaurants table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", describePQ(err))
	}
	return nil
}

// List returns every restaurant ordered by created_at, newest first.
func (p *Postgres) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list restaurants: %w", describePQ(err))
	}
	defer rows.Close()

	out := make([]restaurant.Restaurant, 0)
	for rows.Next() {
		var r restaurant.Restaurant
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Cuisine, &r.City, &r.Address, &r.Lat, &r.Lng, &r.BookingLink,
			&r.SocialLink, &r.Notes, &r.IsVisited, &r.Rating, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan restaurant: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list restaurants: %w", describePQ(err))
	}
	return out, nil
}

// Add inserts the input and returns the stored row.
func (p *Postgres) Add(ctx context.Context, in restaurant.Input) (restaurant.Restaurant, error) {
	rec, err := prepare(in, p.now())
	if err != nil {
		return restaurant.Restaurant{}, err
	}

	_, err = p.db.ExecContext(ctx, `INSERT INTO restaurants (`+restaurantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.Name, rec.Cuisine, rec.City, rec.Address, rec.Lat, rec.Lng, rec.BookingLink,
		rec.SocialLink, rec.Notes, rec.IsVisited, rec.Rating, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("postgres: insert restaurant: %w", describePQ(err))
	}
	return rec, nil
}

// describePQ prefixes server errors with their SQLSTATE condition name.
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", pqErr.Code.Name(), err)
	}
	return err
}

func openPostgres(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("store: postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}

	pg := NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Backend{
		Store:  pg,
		Driver: DriverPostgres,
		Check:  probe.NewDBPingProbe("postgres", db),
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}
