package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/backoff"
)

/* Worker drives the queued -> processing -> completed/failed state machine
 * Claims are atomic conditional updates at the store, so any number of
 * workers can run against the same queue without double-processing
 */

// WorkerConfig holds the processing loop parameters
type WorkerConfig struct {
	// SweepInterval is how often the worker re-drives due queued events
	// whose queue notification was lost or scheduled for a later retry
	SweepInterval time.Duration
	// SweepBatch bounds how many due events one sweep re-enqueues
	SweepBatch int
	/* ClaimLease is how long a claimed event stays reserved for the worker
	 * that took it. A lease that expires marks the worker dead and the
	 * sweep re-queues the event. Must comfortably exceed the longest
	 * expected processing time
	 */
	ClaimLease time.Duration
	// Retention is how long completed events are kept; zero disables purging
	Retention time.Duration
}

// Validate checks the worker configuration
func (c WorkerConfig) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %v", c.SweepInterval)
	}
	if c.SweepBatch < 1 {
		return fmt.Errorf("sweep batch must be at least 1, got %d", c.SweepBatch)
	}
	if c.ClaimLease <= 0 {
		return fmt.Errorf("claim lease must be positive, got %v", c.ClaimLease)
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention cannot be negative, got %v", c.Retention)
	}
	return nil
}

type Worker struct {
	repo       Repository
	queue      Queue
	processor  Processor
	policy     *backoff.Policy
	deadLetter DeadLetter
	config     WorkerConfig
	logger     zerolog.Logger
}

// NewWorker creates a processing worker with dependency injection
func NewWorker(repo Repository, queue Queue, processor Processor, policy *backoff.Policy, deadLetter DeadLetter, config WorkerConfig, logger zerolog.Logger) (*Worker, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("backoff policy is required")
	}
	if deadLetter == nil {
		return nil, fmt.Errorf("dead letter queue is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating worker config: %w", err)
	}
	return &Worker{
		repo:       repo,
		queue:      queue,
		processor:  processor,
		policy:     policy,
		deadLetter: deadLetter,
		config:     config,
		logger:     logger,
	}, nil
}

// Run consumes queue messages until the context is cancelled
// A sweep loop runs alongside to recover events the queue lost
func (w *Worker) Run(ctx context.Context) error {
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		w.sweepLoop(ctx)
	}()
	defer func() { <-sweepDone }()

	for {
		messages, err := w.queue.Consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			w.logger.Error().Err(err).Msg("consuming from queue")
			if sleepErr := sleepContext(ctx, time.Second); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		for _, message := range messages {
			if err := w.Handle(ctx, message.EventID); err != nil {
				// Leave the message unacknowledged for redelivery
				w.logger.Error().
					Str("event_id", message.EventID).
					Err(err).
					Msg("handling event")
				continue
			}
			if err := w.queue.Ack(ctx, message.ID); err != nil {
				w.logger.Warn().
					Str("event_id", message.EventID).
					Err(err).
					Msg("acknowledging message")
			}
		}
	}
}

// Handle claims and processes one event
// The returned error covers storage failures only: processing failures are
// absorbed into the state machine (retry or DLQ)
func (w *Worker) Handle(ctx context.Context, eventID string) error {
	claimedAt := time.Now()
	event, claimed, err := w.repo.Claim(ctx, eventID, claimedAt, claimedAt.Add(w.config.ClaimLease))
	if err != nil {
		return fmt.Errorf("claiming event: %w", err)
	}
	if !claimed {
		// Another worker took it, it is terminal, or it is not due yet
		return nil
	}

	processErr := w.processor.Process(ctx, event)
	if processErr == nil {
		now := time.Now()
		if err := w.repo.MarkCompleted(ctx, event.ID, now); err != nil {
			return fmt.Errorf("marking event completed: %w", err)
		}
		w.logger.Info().
			Str("event_id", event.ID).
			Int("attempt", event.AttemptCount).
			Msg("event processed")
		return nil
	}

	if event.AttemptCount >= event.MaxAttempts {
		reason := fmt.Sprintf("exhausted %d processing attempts: %v", event.AttemptCount, processErr)
		if err := w.repo.MarkFailed(ctx, event.ID, reason); err != nil {
			return fmt.Errorf("marking event failed: %w", err)
		}
		event.Status = Failed
		event.Error = reason
		if err := w.deadLetter.ParkEvent(ctx, event, reason); err != nil {
			return fmt.Errorf("parking exhausted event: %w", err)
		}
		w.logger.Warn().
			Str("event_id", event.ID).
			Int("attempts", event.AttemptCount).
			Msg("event parked in DLQ")
		return nil
	}

	nextAttemptAt := time.Now().Add(w.policy.Next(event.AttemptCount))
	if err := w.repo.Requeue(ctx, event.ID, processErr.Error(), nextAttemptAt); err != nil {
		return fmt.Errorf("requeueing event: %w", err)
	}
	w.logger.Info().
		Str("event_id", event.ID).
		Int("attempt", event.AttemptCount).
		Time("next_attempt_at", nextAttemptAt).
		Msg("event processing failed, retry scheduled")
	return nil
}

// sweepLoop re-enqueues due queued events and purges expired completed ones
func (w *Worker) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	reclaimed, err := w.repo.ReclaimExpired(ctx, time.Now(), w.config.SweepBatch)
	if err != nil {
		w.logger.Error().Err(err).Msg("reclaiming expired claims")
	}
	for _, event := range reclaimed {
		w.logger.Warn().
			Str("event_id", event.ID).
			Int("attempt", event.AttemptCount).
			Msg("claim lease expired, event re-queued")
		if err := w.queue.Enqueue(ctx, event.ID); err != nil {
			w.logger.Warn().Str("event_id", event.ID).Err(err).Msg("re-enqueueing reclaimed event")
		}
	}

	due, err := w.repo.ListDueQueued(ctx, time.Now(), w.config.SweepBatch)
	if err != nil {
		w.logger.Error().Err(err).Msg("listing due events")
		return
	}
	for _, event := range due {
		if err := w.queue.Enqueue(ctx, event.ID); err != nil {
			w.logger.Warn().Str("event_id", event.ID).Err(err).Msg("re-enqueueing due event")
		}
	}

	if w.config.Retention > 0 {
		cutoff := time.Now().Add(-w.config.Retention)
		purged, err := w.repo.PurgeCompletedBefore(ctx, cutoff)
		if err != nil {
			w.logger.Error().Err(err).Msg("purging completed events")
			return
		}
		if purged > 0 {
			w.logger.Info().Int64("purged", purged).Msg("purged completed events past retention")
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
