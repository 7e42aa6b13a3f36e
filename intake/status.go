package intake

import "fmt"

/* Status represents the current state of an inbound event
 * Follows the lifecycle: Queued -> Processing -> Completed/Failed
 * No transition skips Processing; Failed is terminal once the event
 * has been parked in the DLQ
 */
type Status int

const (
	Queued Status = iota + 1
	Processing
	Completed
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "queued":
		return Queued
	case "processing":
		return Processing
	case "completed":
		return Completed
	case "failed":
		return Failed
	default:
		return Queued
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Queued || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Completed || s == Failed
}
