package intake

import (
	"time"
)

/* Event represents a received callback in the system
 * Uses value semantics as it represents data, not behavior
 * Append-only except for the single status transition to a terminal state
 */
type Event struct {
	ID             string
	WorkflowID     string
	AgentID        string
	Offset         *int64 // monotonic offset from the sender, if provided
	Payload        []byte // opaque JSON, never interpreted at this layer
	SignatureValid bool
	DedupHash      string // globally unique fingerprint over identifying fields
	ReceivedAt     time.Time
	ProcessedAt    *time.Time
	Status         Status
	HTTPStatus     int // synchronous status returned to the caller
	Error          string
	AttemptCount   int
	MaxAttempts    int
	NextAttemptAt  time.Time
}
