package intake

import "context"

// Message is a queued notification that an event awaits processing
type Message struct {
	ID      string // queue-assigned message id, used for acknowledgment
	EventID string
}

/* Queue carries accepted event ids to the processing workers
 * Delivery is at-least-once: the store is the source of truth and the
 * conditional claim makes redundant notifications harmless
 */
type Queue interface {
	Enqueue(ctx context.Context, eventID string) error
	// Consume blocks until messages are available or the context is cancelled
	Consume(ctx context.Context) ([]Message, error)
	Ack(ctx context.Context, messageID string) error
	Close() error
}

// Processor handles an accepted event
// Implementations are external collaborators injected into the worker
type Processor interface {
	Process(ctx context.Context, event Event) error
}

// ProcessorFunc adapts a function to the Processor interface
type ProcessorFunc func(ctx context.Context, event Event) error

// Process calls f(ctx, event)
func (f ProcessorFunc) Process(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// DeadLetter receives events that exhausted their processing budget
type DeadLetter interface {
	ParkEvent(ctx context.Context, event Event, reason string) error
}
