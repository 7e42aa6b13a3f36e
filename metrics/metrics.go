package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the exchange.
type Metrics struct {
	// QueueDepth is the number of pending notifications in the event stream
	QueueDepth int64 `json:"queue_depth"`

	// EventStatusCounts maps status name to count of inbound events in that status
	EventStatusCounts map[string]int64 `json:"event_status_counts"`

	// DLQDepth is the number of unresolved dead letter entries
	DLQDepth int64 `json:"dlq_depth"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the exchange.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueDepth returns the number of pending stream notifications
	GetQueueDepth(ctx context.Context) (int64, error)

	// GetEventStatusCounts returns the count of inbound events by status
	GetEventStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetDLQDepth returns the number of unresolved dead letter entries
	GetDLQDepth(ctx context.Context) (int64, error)
}
