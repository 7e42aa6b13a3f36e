package intake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/signature"
)

/* Service represents the business logic layer for inbound intake
 * Composes signature verification, the deduplication gate and the
 * persisted state machine
 */

// ErrInvalidSignature is returned when the payload signature does not verify
var ErrInvalidSignature = errors.New("invalid signature")

// Ack is the synchronous answer to the sender
// A replay is a success, never a reason for the sender to keep retrying
type Ack struct {
	EventID    string
	Duplicate  bool
	HTTPStatus int
}

// UseCase defines the business operations for event intake
type UseCase interface {
	Receive(ctx context.Context, workflowID, agentID string, offset *int64, payload []byte, signatureHeader string) (Ack, error)
}

// Config holds the intake policy knobs
type Config struct {
	Secret string
	/* StoreInvalidSignatures keeps rejected events as flagged rows for
	 * audit instead of dropping them. Default policy rejects without
	 * persisting
	 */
	StoreInvalidSignatures bool
	// MaxAttempts is the processing retry budget per event
	MaxAttempts int
}

// Validate checks the intake configuration
func (c Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("shared secret is required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

type Service struct {
	repo   Repository
	queue  Queue
	config Config
	logger zerolog.Logger
}

// NewService creates a new intake service with dependency injection
func NewService(repo Repository, queue Queue, config Config, logger zerolog.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating intake config: %w", err)
	}
	return &Service{
		repo:   repo,
		queue:  queue,
		config: config,
		logger: logger,
	}, nil
}

// Receive verifies, deduplicates and stores one inbound callback
// Returns ErrInvalidSignature for rejected payloads; a duplicate is not an
// error, the first row's outcome is replayed instead
func (s *Service) Receive(ctx context.Context, workflowID, agentID string, offset *int64, payload []byte, signatureHeader string) (Ack, error) {
	now := time.Now()

	if !signature.Verify(s.config.Secret, payload, signatureHeader) {
		if !s.config.StoreInvalidSignatures {
			return Ack{HTTPStatus: http.StatusUnauthorized}, ErrInvalidSignature
		}
		flagged := Event{
			ID:             uuid.New().String(),
			WorkflowID:     workflowID,
			AgentID:        agentID,
			Offset:         offset,
			Payload:        payload,
			SignatureValid: false,
			DedupHash:      ComputeHash(workflowID, agentID, offset, payload),
			ReceivedAt:     now,
			Status:         Failed,
			HTTPStatus:     http.StatusUnauthorized,
			Error:          "invalid signature",
			MaxAttempts:    s.config.MaxAttempts,
			NextAttemptAt:  now,
		}
		stored, err := s.repo.Insert(ctx, flagged)
		if err != nil && !errors.Is(err, ErrDuplicate) {
			return Ack{HTTPStatus: http.StatusInternalServerError}, fmt.Errorf("storing flagged event: %w", err)
		}
		return Ack{EventID: stored.ID, HTTPStatus: http.StatusUnauthorized}, ErrInvalidSignature
	}

	event := Event{
		ID:             uuid.New().String(),
		WorkflowID:     workflowID,
		AgentID:        agentID,
		Offset:         offset,
		Payload:        payload,
		SignatureValid: true,
		DedupHash:      ComputeHash(workflowID, agentID, offset, payload),
		ReceivedAt:     now,
		Status:         Queued,
		HTTPStatus:     http.StatusOK,
		MaxAttempts:    s.config.MaxAttempts,
		NextAttemptAt:  now,
	}

	stored, err := s.repo.Insert(ctx, event)
	if errors.Is(err, ErrDuplicate) {
		// Same logical event: replay the first row's outcome
		return Ack{EventID: stored.ID, Duplicate: true, HTTPStatus: http.StatusOK}, nil
	}
	if err != nil {
		return Ack{HTTPStatus: http.StatusInternalServerError}, fmt.Errorf("storing event: %w", err)
	}

	/* The queue notification is best-effort: the store already holds the
	 * queued event and the sweep loop recovers lost notifications
	 */
	if err := s.queue.Enqueue(ctx, stored.ID); err != nil {
		s.logger.Warn().
			Str("event_id", stored.ID).
			Err(err).
			Msg("enqueueing accepted event failed, sweep will recover it")
	}

	return Ack{EventID: stored.ID, HTTPStatus: http.StatusOK}, nil
}
