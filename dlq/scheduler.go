package dlq

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/backoff"
)

// Remediator re-drives a parked piece of work through its original pipeline
type Remediator interface {
	Remediate(ctx context.Context, entry Entry) error
}

// RemediatorFunc adapts a function to the Remediator interface
type RemediatorFunc func(ctx context.Context, entry Entry) error

// Remediate calls f(ctx, entry)
func (f RemediatorFunc) Remediate(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// SchedulerConfig holds the automatic remediation loop settings
type SchedulerConfig struct {
	Interval time.Duration
	Batch    int
	// ClaimHold is how long a claimed entry stays invisible to other
	// scheduler instances
	ClaimHold time.Duration
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Batch <= 0 {
		return fmt.Errorf("batch must be positive, got %d", c.Batch)
	}
	if c.ClaimHold <= 0 {
		return fmt.Errorf("claim hold must be positive, got %s", c.ClaimHold)
	}
	return nil
}

// Scheduler periodically re-drives due dead letter entries
// Reschedules after a failed remediation follow the backoff policy keyed
// on the entry's failure count
type Scheduler struct {
	repo       Repository
	remediator Remediator
	policy     *backoff.Policy
	config     SchedulerConfig
	logger     zerolog.Logger
}

// NewScheduler creates a new remediation scheduler
func NewScheduler(repo Repository, remediator Remediator, policy *backoff.Policy, config SchedulerConfig, logger zerolog.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating scheduler config: %w", err)
	}
	if remediator == nil {
		return nil, fmt.Errorf("remediator is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("backoff policy is required")
	}
	return &Scheduler{
		repo:       repo,
		remediator: remediator,
		policy:     policy,
		config:     config,
		logger:     logger.With().Str("component", "dlq-scheduler").Logger(),
	}, nil
}

// Run drives the remediation loop until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("remediation sweep failed")
			}
		}
	}
}

// Sweep claims due entries and re-drives each one
func (s *Scheduler) Sweep(ctx context.Context) error {
	now := time.Now().UTC()
	entries, err := s.repo.ClaimDue(ctx, now, s.config.ClaimHold, s.config.Batch)
	if err != nil {
		return fmt.Errorf("claiming due entries: %w", err)
	}

	for _, entry := range entries {
		if err := s.remediator.Remediate(ctx, entry); err != nil {
			next := time.Now().UTC().Add(s.policy.Next(entry.FailureCount + 1))
			if recordErr := s.repo.RecordFailure(ctx, entry.ID, err.Error(), next); recordErr != nil {
				s.logger.Error().Err(recordErr).
					Str("entry_id", entry.ID).
					Msg("failed to record remediation failure")
			}
			s.logger.Warn().Err(err).
				Str("entry_id", entry.ID).
				Int("failure_count", entry.FailureCount+1).
				Msg("remediation attempt failed")
			continue
		}

		if err := s.repo.Resolve(ctx, entry.ID, ResolutionRetry, time.Now().UTC()); err != nil {
			s.logger.Error().Err(err).
				Str("entry_id", entry.ID).
				Msg("failed to resolve remediated entry")
			continue
		}
		s.logger.Info().
			Str("entry_id", entry.ID).
			Str("source", entry.Source.String()).
			Msg("dead letter entry remediated")
	}

	return nil
}
