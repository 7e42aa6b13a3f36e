package delivery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/backoff"
)

/* Service orchestrates a full delivery cycle
 * Attempts are strictly sequential within one Deliver call; deliveries for
 * different webhook ids run fully in parallel with no shared lock
 * HTTP-level failures never surface as errors, only as the final Result
 */

// UseCase defines the business operations for outbound delivery
type UseCase interface {
	Deliver(ctx context.Context, webhookID, url string, payload []byte, headers map[string]string) (Result, error)
	DeliverTo(ctx context.Context, webhookID string, target Target, payload []byte) (Result, error)
}

// Target describes one destination for a delivery cycle
// The override fields fall back to the configured defaults when zero
type Target struct {
	URL         string
	Headers     map[string]string
	Secret      string
	MaxAttempts int
	Timeout     time.Duration
}

// AttemptExecutor performs one delivery attempt
type AttemptExecutor interface {
	Execute(ctx context.Context, webhookID string, target Target, body []byte, attemptNumber int) Attempt
}

// Notifier receives best-effort completion notifications
// Implementations must never block or influence the delivery outcome
type Notifier interface {
	DeliveryFinished(result Result)
}

// Config holds the orchestration parameters
type Config struct {
	MaxAttempts int
	// HonorRetryAfter uses a parseable Retry-After response header as a
	// floor on the computed backoff. Off by default.
	HonorRetryAfter bool
}

// Validate checks the orchestration parameters
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

type Service struct {
	executor   AttemptExecutor
	policy     *backoff.Policy
	classifier Classifier
	recorder   Recorder
	deadLetter DeadLetter
	notifier   Notifier
	config     Config
	logger     zerolog.Logger
}

// NewService creates a delivery orchestrator with dependency injection
// The notifier is optional; everything else is required
func NewService(executor AttemptExecutor, policy *backoff.Policy, classifier Classifier, recorder Recorder, deadLetter DeadLetter, notifier Notifier, config Config, logger zerolog.Logger) (*Service, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("backoff policy is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if deadLetter == nil {
		return nil, fmt.Errorf("dead letter queue is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating delivery config: %w", err)
	}
	return &Service{
		executor:   executor,
		policy:     policy,
		classifier: classifier,
		recorder:   recorder,
		deadLetter: deadLetter,
		notifier:   notifier,
		config:     config,
		logger:     logger,
	}, nil
}

// Deliver runs up to MaxAttempts attempts against the target URL
// The returned error covers persistence failures only, never HTTP outcomes
func (s *Service) Deliver(ctx context.Context, webhookID, url string, payload []byte, headers map[string]string) (Result, error) {
	return s.DeliverTo(ctx, webhookID, Target{URL: url, Headers: headers}, payload)
}

// DeliverTo runs a delivery cycle honoring the target's overrides
func (s *Service) DeliverTo(ctx context.Context, webhookID string, target Target, payload []byte) (Result, error) {
	start := time.Now()
	result := Result{WebhookID: webhookID}

	maxAttempts := s.config.MaxAttempts
	if target.MaxAttempts > 0 {
		maxAttempts = target.MaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := s.policy.Next(attempt - 1)
			if s.config.HonorRetryAfter {
				if floor, ok := retryAfterFloor(result); ok && floor > wait {
					wait = floor
				}
			}
			if err := sleepContext(ctx, wait); err != nil {
				return s.finalize(ctx, result, start, false, fmt.Sprintf("delivery cancelled while waiting to retry: %v", err))
			}
		}

		a := s.executor.Execute(ctx, webhookID, target, payload, attempt)
		result.Attempts = append(result.Attempts, a)
		result.StatusCode = a.StatusCode

		if ctx.Err() != nil {
			// Partial attempts stay recorded for audit
			return s.finalize(ctx, result, start, false, fmt.Sprintf("delivery cancelled: %v", ctx.Err()))
		}

		switch s.classifier.Classify(a) {
		case Success:
			return s.finalize(ctx, result, start, true, "")
		case Terminal:
			return s.finalize(ctx, result, start, false, fmt.Sprintf("terminal status %d, not retrying", a.StatusCode))
		case Retryable:
			s.logger.Debug().
				Str("webhook_id", webhookID).
				Int("attempt", attempt).
				Int("status", a.StatusCode).
				Bool("network_error", a.NetworkError).
				Msg("delivery attempt failed, will retry")
		}
	}

	result, err := s.finalize(ctx, result, start, false, fmt.Sprintf("exhausted %d delivery attempts", maxAttempts))
	if err != nil {
		return result, err
	}
	if dlqErr := s.deadLetter.ParkDelivery(ctx, result, result.Error); dlqErr != nil {
		return result, fmt.Errorf("parking exhausted delivery: %w", dlqErr)
	}
	return result, nil
}

// finalize closes the result exactly once, records it and emits the
// fire-and-forget notification
func (s *Service) finalize(ctx context.Context, result Result, start time.Time, success bool, errText string) (Result, error) {
	result.Success = success
	result.Duration = time.Since(start)
	result.Error = errText

	// Cancellation aborts the delivery, not the audit trail
	ctx = context.WithoutCancel(ctx)
	if err := s.recorder.Record(ctx, result); err != nil {
		return result, fmt.Errorf("recording delivery result: %w", err)
	}
	if s.notifier != nil {
		go s.notifier.DeliveryFinished(result)
	}
	return result, nil
}

// retryAfterFloor extracts a Retry-After hint from the last attempt
func retryAfterFloor(result Result) (time.Duration, bool) {
	last, ok := result.LastAttempt()
	if !ok {
		return 0, false
	}
	value := last.ResponseHeaders["Retry-After"]
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// sleepContext waits cooperatively, aborting when the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
