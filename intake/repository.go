package intake

import (
	"context"
	"errors"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * The storage layer owns the two races in this subsystem:
 * the dedup_hash uniqueness constraint arbitrates concurrent identical
 * submissions, and the conditional claim arbitrates competing workers
 */

// ErrNotFound is returned when an event does not exist
var ErrNotFound = errors.New("event not found")

// ErrDuplicate is returned by Insert when the dedup hash already exists
// The previously stored event accompanies it so callers can replay the
// original outcome
var ErrDuplicate = errors.New("duplicate event")

// Reader provides read operations for inbound events
type Reader interface {
	Get(ctx context.Context, id string) (Event, error)
	GetByDedupHash(ctx context.Context, hash string) (Event, error)
	/* ListDueQueued returns queued events whose next_attempt_at has passed
	 * Used by the sweep loop to recover events whose queue notification
	 * was lost and to re-drive scheduled retries
	 */
	ListDueQueued(ctx context.Context, now time.Time, limit int) ([]Event, error)
	StatusCounts(ctx context.Context) (map[string]int64, error)
}

// Writer provides write operations for inbound events
type Writer interface {
	/* Insert stores a new event, relying on the unique constraint on
	 * dedup_hash. On a constraint violation it returns the previously
	 * stored event together with ErrDuplicate; a naive check-then-insert
	 * is not acceptable here
	 */
	Insert(ctx context.Context, event Event) (Event, error)
	/* Claim atomically moves a due queued event to processing and
	 * increments its attempt count. Returns false when the event was not
	 * claimable (already taken, terminal, or not yet due), so two workers
	 * never double-process one event. The deadline is the claim lease:
	 * a processing row whose lease expires belongs to a dead worker and
	 * may be reclaimed
	 */
	Claim(ctx context.Context, id string, now, deadline time.Time) (Event, bool, error)
	/* ReclaimExpired re-queues processing events whose claim lease has
	 * passed, so a worker crash never strands an event mid-flight
	 */
	ReclaimExpired(ctx context.Context, now time.Time, limit int) ([]Event, error)
	MarkCompleted(ctx context.Context, id string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id string, errText string) error
	// Requeue schedules another processing attempt after a backoff wait
	Requeue(ctx context.Context, id string, errText string, nextAttemptAt time.Time) error
	/* Redrive moves a failed event back to queued with a fresh attempt
	 * budget. Returns false when the event is not in the failed state
	 */
	Redrive(ctx context.Context, id string, now time.Time) (bool, error)
	// PurgeCompletedBefore removes completed events older than the cutoff
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
