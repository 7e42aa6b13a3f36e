package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// UseCase defines the statistics operations exposed to handlers
type UseCase interface {
	RollupPeriod(ctx context.Context, start, end time.Time) (Rollup, error)
	Recent(ctx context.Context, limit int) ([]Rollup, error)
}

// Config holds the aggregation loop settings
type Config struct {
	// Period is both the rollup window size and the loop cadence
	Period time.Duration
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Period < time.Minute {
		return fmt.Errorf("period must be at least one minute, got %s", c.Period)
	}
	return nil
}

// Service computes and stores periodic rollups
type Service struct {
	repo   Repository
	config Config
	logger zerolog.Logger
	// lastPeriodEnd is the end bound of the newest period this process
	// rolled up; zero until seeded from the store
	lastPeriodEnd time.Time
}

// NewService creates a new statistics service
func NewService(repo Repository, config Config, logger zerolog.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating stats config: %w", err)
	}
	return &Service{
		repo:   repo,
		config: config,
		logger: logger.With().Str("component", "stats").Logger(),
	}, nil
}

// RollupPeriod aggregates one period and stores the result
// Calling it again for the same bounds recomputes and replaces the rollup,
// so replays and overlapping workers converge on the same numbers
func (s *Service) RollupPeriod(ctx context.Context, start, end time.Time) (Rollup, error) {
	if !end.After(start) {
		return Rollup{}, fmt.Errorf("period end %s must be after start %s", end, start)
	}

	rollup, err := s.repo.Aggregate(ctx, start, end)
	if err != nil {
		return Rollup{}, fmt.Errorf("aggregating period: %w", err)
	}
	rollup.PeriodStart = start
	rollup.PeriodEnd = end
	rollup.ComputedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, rollup); err != nil {
		return Rollup{}, fmt.Errorf("storing rollup: %w", err)
	}

	s.logger.Debug().
		Time("period_start", start).
		Time("period_end", end).
		Int64("events_received", rollup.EventsReceived).
		Int64("delivery_attempts", rollup.DeliveryAttempts).
		Msg("period rolled up")
	return rollup, nil
}

// Recent returns the latest stored rollups, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]Rollup, error) {
	return s.repo.ListRecent(ctx, limit)
}

// CatchUp rolls up every period that closed since the previous call
// A delayed or missed tick therefore yields the skipped rollups on the
// next one instead of losing them. The first call resumes after the
// newest stored rollup. Stops at the first failure, so the next call
// retries from the failed period
func (s *Service) CatchUp(ctx context.Context, now time.Time) error {
	end := now.UTC().Truncate(s.config.Period)
	if s.lastPeriodEnd.IsZero() {
		s.lastPeriodEnd = s.seedCursor(ctx, end)
	}
	for start := s.lastPeriodEnd; start.Before(end); start = start.Add(s.config.Period) {
		if _, err := s.RollupPeriod(ctx, start, start.Add(s.config.Period)); err != nil {
			return fmt.Errorf("rolling up period starting %s: %w", start, err)
		}
		s.lastPeriodEnd = start.Add(s.config.Period)
	}
	return nil
}

// seedCursor picks where rollups resume: right after the newest stored
// rollup, or at the previous period when the store is empty
func (s *Service) seedCursor(ctx context.Context, end time.Time) time.Time {
	latest, err := s.repo.Latest(ctx)
	if err == nil {
		return latest.PeriodEnd
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Msg("loading latest rollup, resuming from the previous period")
	}
	return end.Add(-s.config.Period)
}

// Run rolls up each completed period until the context is cancelled
// Periods are aligned to wall-clock multiples of the configured window
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := s.CatchUp(ctx, now); err != nil {
				s.logger.Error().Err(err).Msg("rollup failed")
			}
		}
	}
}
