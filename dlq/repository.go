package dlq

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an entry does not exist
var ErrNotFound = errors.New("dead letter entry not found")

// ErrResolved is returned when mutating an already resolved entry
var ErrResolved = errors.New("dead letter entry already resolved")

// Reader defines read operations over dead letter entries
type Reader interface {
	Get(ctx context.Context, id string) (Entry, error)
	// List returns unresolved entries, newest first
	List(ctx context.Context, limit int) ([]Entry, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]Entry, error)
	Depth(ctx context.Context) (int64, error)
}

// Writer defines write operations over dead letter entries
type Writer interface {
	Insert(ctx context.Context, entry Entry) error
	// ClaimDue atomically bumps next_retry_at so only one scheduler
	// instance works a due entry
	ClaimDue(ctx context.Context, now time.Time, hold time.Duration, limit int) ([]Entry, error)
	RecordFailure(ctx context.Context, id string, reason string, nextRetryAt time.Time) error
	Resolve(ctx context.Context, id string, resolution Resolution, resolvedAt time.Time) error
}

// Repository combines read and write operations
type Repository interface {
	Reader
	Writer
}
