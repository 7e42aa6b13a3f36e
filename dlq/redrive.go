package dlq

import (
	"context"
	"fmt"
	"time"
)

// EventStore is the slice of the intake storage a redrive needs
type EventStore interface {
	Redrive(ctx context.Context, id string, now time.Time) (bool, error)
}

// EventQueue notifies workers that an event is ready again
type EventQueue interface {
	Enqueue(ctx context.Context, eventID string) error
}

/* NewEventRedriver builds the standard Remediator: failed inbound events
 * go back to the queue with a fresh attempt budget. Delivery entries are
 * rejected; redelivering a payload a destination already refused is an
 * operator decision, not an automatic one
 */
func NewEventRedriver(store EventStore, queue EventQueue) RemediatorFunc {
	return func(ctx context.Context, entry Entry) error {
		if entry.Source != SourceIntake {
			return fmt.Errorf("entry %s from source %s has no automatic redrive", entry.ID, entry.Source)
		}

		revived, err := store.Redrive(ctx, entry.RefID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("redriving event %s: %w", entry.RefID, err)
		}
		if !revived {
			return fmt.Errorf("event %s is not in a redrivable state", entry.RefID)
		}

		if err := queue.Enqueue(ctx, entry.RefID); err != nil {
			// The sweep loop picks the event up even if this notification
			// is lost
			return nil
		}
		return nil
	}
}
