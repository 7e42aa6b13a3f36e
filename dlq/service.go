package dlq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/delivery"
	"github.com/marcelsud/webhook-exchange/intake"
)

// UseCase defines the dead letter operations exposed to handlers
type UseCase interface {
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]Entry, error)
	Resolve(ctx context.Context, id string, resolution Resolution) (Entry, error)
}

// Config holds dead letter settings
type Config struct {
	// MaxRetries bounds automatic remediation per entry; manual resolution
	// is always available
	MaxRetries int
	RetryDelay time.Duration
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive, got %s", c.RetryDelay)
	}
	return nil
}

/* Service parks exhausted work and resolves it later.
 * It implements both pipelines' DeadLetter interfaces so the delivery
 * orchestrator and the intake worker can park without knowing about
 * this package's storage
 */
type Service struct {
	repo       Repository
	remediator Remediator
	config     Config
	logger     zerolog.Logger
}

// NewService creates a new dead letter service
// remediator may be nil, in which case retry resolutions only mark the entry
func NewService(repo Repository, remediator Remediator, config Config, logger zerolog.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating dead letter config: %w", err)
	}
	return &Service{
		repo:       repo,
		remediator: remediator,
		config:     config,
		logger:     logger.With().Str("component", "dlq").Logger(),
	}, nil
}

// ParkEvent stores an inbound event that exhausted processing attempts
// The failure count carries over from processing; the configured retry
// allowance stacks on top of it
func (s *Service) ParkEvent(ctx context.Context, event intake.Event, reason string) error {
	now := time.Now().UTC()
	entry := Entry{
		ID:           uuid.NewString(),
		Source:       SourceIntake,
		RefID:        event.ID,
		Payload:      event.Payload,
		Reason:       reason,
		FailureCount: event.AttemptCount,
		MaxRetries:   event.AttemptCount + s.config.MaxRetries,
		NextRetryAt:  now.Add(s.config.RetryDelay),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("parking event: %w", err)
	}

	s.logger.Warn().
		Str("entry_id", entry.ID).
		Str("event_id", event.ID).
		Str("reason", reason).
		Msg("event parked in dead letter queue")
	return nil
}

// ParkDelivery stores an outbound delivery that exhausted its attempts
// Delivery entries carry no automatic retry budget; redelivery needs an
// operator decision since the destination kept rejecting the payload
func (s *Service) ParkDelivery(ctx context.Context, result delivery.Result, reason string) error {
	now := time.Now().UTC()
	var payload []byte
	if last, ok := result.LastAttempt(); ok {
		payload = last.RequestBody
	}
	entry := Entry{
		ID:          uuid.NewString(),
		Source:      SourceDelivery,
		RefID:       result.WebhookID,
		Payload:     payload,
		Reason:      reason,
		MaxRetries:  0,
		NextRetryAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("parking delivery: %w", err)
	}

	s.logger.Warn().
		Str("entry_id", entry.ID).
		Str("webhook_id", result.WebhookID).
		Str("reason", reason).
		Msg("delivery parked in dead letter queue")
	return nil
}

// Get retrieves an entry by ID
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// List returns unresolved entries
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}

// ListDue returns unresolved entries eligible for automatic remediation
func (s *Service) ListDue(ctx context.Context, now time.Time, limit int) ([]Entry, error) {
	return s.repo.ListDue(ctx, now, limit)
}

// Resolve closes an entry with the given resolution
// A retry resolution re-drives the work once before closing; if the redrive
// fails the entry stays open with the failure recorded
func (s *Service) Resolve(ctx context.Context, id string, resolution Resolution) (Entry, error) {
	if err := resolution.Validate(); err != nil {
		return Entry{}, err
	}

	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if entry.Resolved {
		return Entry{}, ErrResolved
	}

	now := time.Now().UTC()
	if resolution == ResolutionRetry && s.remediator != nil {
		if err := s.remediator.Remediate(ctx, entry); err != nil {
			recordErr := s.repo.RecordFailure(ctx, id, err.Error(), now.Add(s.config.RetryDelay))
			if recordErr != nil {
				return Entry{}, fmt.Errorf("recording remediation failure: %w", recordErr)
			}
			return Entry{}, fmt.Errorf("remediating entry: %w", err)
		}
	}

	if err := s.repo.Resolve(ctx, id, resolution, now); err != nil {
		return Entry{}, fmt.Errorf("resolving entry: %w", err)
	}

	entry.Resolved = true
	entry.Resolution = resolution
	entry.ResolvedAt = &now
	entry.UpdatedAt = now

	s.logger.Info().
		Str("entry_id", id).
		Str("resolution", resolution.String()).
		Msg("dead letter entry resolved")
	return entry, nil
}
