package stats

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no rollup exists for a period
var ErrNotFound = errors.New("rollup not found")

// Source computes aggregates from the live tables
type Source interface {
	Aggregate(ctx context.Context, start, end time.Time) (Rollup, error)
}

// Store persists computed rollups
type Store interface {
	// Upsert replaces any existing rollup with the same period bounds
	Upsert(ctx context.Context, rollup Rollup) error
	Get(ctx context.Context, start, end time.Time) (Rollup, error)
	// Latest returns the stored rollup with the newest period end,
	// or ErrNotFound when nothing has been rolled up yet
	Latest(ctx context.Context) (Rollup, error)
	ListRecent(ctx context.Context, limit int) ([]Rollup, error)
}

// Repository combines aggregation and persistence
type Repository interface {
	Source
	Store
}
