package metrics

import (
	"context"
	"fmt"
	"time"
)

// QueueLener reports the depth of the pending event stream
type QueueLener interface {
	Len(ctx context.Context) (int64, error)
}

// EventCounter reports inbound event counts by status
type EventCounter interface {
	StatusCounts(ctx context.Context) (map[string]int64, error)
}

// DLQDepther reports the number of unresolved dead letter entries
type DLQDepther interface {
	Depth(ctx context.Context) (int64, error)
}

// StoreCollector implements Collector on top of the exchange's stores
type StoreCollector struct {
	queue  QueueLener
	events EventCounter
	dlq    DLQDepther
}

// NewStoreCollector creates a collector over the queue and both stores
func NewStoreCollector(queue QueueLener, events EventCounter, dlq DLQDepther) *StoreCollector {
	return &StoreCollector{
		queue:  queue,
		events: events,
		dlq:    dlq,
	}
}

// Collect gathers all metrics
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	queueDepth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	statusCounts, err := c.GetEventStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting event status counts: %w", err)
	}

	dlqDepth, err := c.GetDLQDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting dlq depth: %w", err)
	}

	return Metrics{
		QueueDepth:        queueDepth,
		EventStatusCounts: statusCounts,
		DLQDepth:          dlqDepth,
		Timestamp:         time.Now(),
	}, nil
}

// GetQueueDepth returns the number of pending stream notifications
func (c *StoreCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	return c.queue.Len(ctx)
}

// GetEventStatusCounts returns the count of inbound events by status
func (c *StoreCollector) GetEventStatusCounts(ctx context.Context) (map[string]int64, error) {
	return c.events.StatusCounts(ctx)
}

// GetDLQDepth returns the number of unresolved dead letter entries
func (c *StoreCollector) GetDLQDepth(ctx context.Context) (int64, error) {
	return c.dlq.Depth(ctx)
}
