package delivery

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no result exists for a webhook id
var ErrNotFound = errors.New("delivery result not found")

/* Small, focused interfaces following "The Go Way"
 * The orchestrator only needs to append finalized results and hand off
 * exhausted deliveries; reads belong to the observability consumers
 */

// Recorder persists finalized delivery results
type Recorder interface {
	// Record stores a finalized result together with its attempts
	Record(ctx context.Context, result Result) error
}

// Reader provides read access for observability consumers
type Reader interface {
	Get(ctx context.Context, webhookID string) (Result, error)
}

// DeadLetter receives deliveries that exhausted their attempt budget
type DeadLetter interface {
	ParkDelivery(ctx context.Context, result Result, reason string) error
}

// Repository composes persistence operations for delivery results
type Repository interface {
	Recorder
	Reader
	Close(ctx context.Context) error
}
