package dlq

import (
	"fmt"
	"time"
)

/* Dead letter entries hold work that exhausted its retry budget.
 * Entries stay visible until an operator or the scheduler resolves them
 */

// Source identifies which pipeline parked the entry
type Source int

const (
	SourceIntake Source = iota + 1
	SourceDelivery
)

func (s Source) String() string {
	switch s {
	case SourceIntake:
		return "intake"
	case SourceDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// NewSource creates a Source from a string
func NewSource(s string) Source {
	switch s {
	case "intake":
		return SourceIntake
	case "delivery":
		return SourceDelivery
	default:
		return 0
	}
}

// Validate checks if the source is valid
func (s Source) Validate() error {
	switch s {
	case SourceIntake, SourceDelivery:
		return nil
	default:
		return fmt.Errorf("invalid source: %d", s)
	}
}

// Resolution records how an entry left the dead letter queue
type Resolution int

const (
	ResolutionRetry Resolution = iota + 1
	ResolutionDiscard
	ResolutionManual
)

func (r Resolution) String() string {
	switch r {
	case ResolutionRetry:
		return "retry"
	case ResolutionDiscard:
		return "discard"
	case ResolutionManual:
		return "manual"
	default:
		return "unknown"
	}
}

// NewResolution creates a Resolution from a string
func NewResolution(s string) Resolution {
	switch s {
	case "retry":
		return ResolutionRetry
	case "discard":
		return ResolutionDiscard
	case "manual":
		return ResolutionManual
	default:
		return 0
	}
}

// Validate checks if the resolution is valid
func (r Resolution) Validate() error {
	switch r {
	case ResolutionRetry, ResolutionDiscard, ResolutionManual:
		return nil
	default:
		return fmt.Errorf("invalid resolution: %d", r)
	}
}

// Entry is a parked piece of work awaiting remediation
type Entry struct {
	ID           string
	Source       Source
	RefID        string // id of the inbound event or outbound delivery
	Payload      []byte
	Reason       string
	FailureCount int // remediation attempts, not the original attempts
	MaxRetries   int
	NextRetryAt  time.Time
	Resolved     bool
	Resolution   Resolution // zero until resolved
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Retryable reports whether the scheduler may still pick this entry up
func (e Entry) Retryable(now time.Time) bool {
	return !e.Resolved && e.FailureCount < e.MaxRetries && !e.NextRetryAt.After(now)
}
