package dlq_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/webhook-exchange/backoff"
	"github.com/marcelsud/webhook-exchange/dlq"
	"github.com/marcelsud/webhook-exchange/dlq/mocks"
)

func testPolicy(t *testing.T) *backoff.Policy {
	t.Helper()
	policy, err := backoff.New(backoff.Config{
		InitialDelay: 5 * time.Minute,
		MaxDelay:     time.Hour,
		Factor:       2,
		Jitter:       0,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return policy
}

func newTestScheduler(t *testing.T, repo dlq.Repository, remediator dlq.Remediator) *dlq.Scheduler {
	t.Helper()
	scheduler, err := dlq.NewScheduler(repo, remediator, testPolicy(t), dlq.SchedulerConfig{
		Interval:  time.Minute,
		Batch:     10,
		ClaimHold: 2 * time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	return scheduler
}

func TestSchedulerSweep(t *testing.T) {
	entries := []dlq.Entry{
		{ID: "entry-1", Source: dlq.SourceIntake, RefID: "evt-1", MaxRetries: 3},
		{ID: "entry-2", Source: dlq.SourceIntake, RefID: "evt-2", MaxRetries: 3},
	}

	t.Run("success - remediated entries are resolved as retry", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		repo.On("ClaimDue", mock.Anything, mock.Anything, 2*time.Minute, 10).Return(entries, nil)
		for _, entry := range entries {
			remediator.On("Remediate", mock.Anything, entry).Return(nil)
			repo.On("Resolve", mock.Anything, entry.ID, dlq.ResolutionRetry, mock.Anything).Return(nil)
		}

		require.NoError(t, scheduler.Sweep(context.Background()))
	})

	t.Run("success - failed remediation reschedules instead of resolving", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		repo.On("ClaimDue", mock.Anything, mock.Anything, 2*time.Minute, 10).Return(entries[:1], nil)
		remediator.On("Remediate", mock.Anything, entries[0]).Return(errors.New("still failing"))
		repo.On("RecordFailure", mock.Anything, "entry-1", "still failing",
			mock.MatchedBy(func(next time.Time) bool {
				return next.After(time.Now().UTC().Add(4 * time.Minute))
			})).Return(nil)

		require.NoError(t, scheduler.Sweep(context.Background()))
	})

	t.Run("success - reschedule delay grows with the failure count", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		worn := dlq.Entry{ID: "entry-3", Source: dlq.SourceIntake, RefID: "evt-3",
			FailureCount: 2, MaxRetries: 5}
		repo.On("ClaimDue", mock.Anything, mock.Anything, 2*time.Minute, 10).
			Return([]dlq.Entry{worn}, nil)
		remediator.On("Remediate", mock.Anything, worn).Return(errors.New("still failing"))
		// third failure: 5min * 2^2 = 20min
		repo.On("RecordFailure", mock.Anything, "entry-3", "still failing",
			mock.MatchedBy(func(next time.Time) bool {
				return next.After(time.Now().UTC().Add(19 * time.Minute))
			})).Return(nil)

		require.NoError(t, scheduler.Sweep(context.Background()))
	})

	t.Run("success - empty sweep does nothing", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		repo.On("ClaimDue", mock.Anything, mock.Anything, 2*time.Minute, 10).Return(nil, nil)

		require.NoError(t, scheduler.Sweep(context.Background()))
	})

	t.Run("error - claim failure surfaces", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		repo.On("ClaimDue", mock.Anything, mock.Anything, 2*time.Minute, 10).
			Return(nil, errors.New("connection refused"))

		err := scheduler.Sweep(context.Background())
		assert.ErrorContains(t, err, "claiming due entries")
	})
}

func TestSchedulerRun(t *testing.T) {
	t.Run("success - run stops when context is cancelled", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		remediator := mocks.NewRemediator(t)
		scheduler := newTestScheduler(t, repo, remediator)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := scheduler.Run(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewScheduler(t *testing.T) {
	repo := mocks.NewRepository(t)

	t.Run("error - missing remediator", func(t *testing.T) {
		_, err := dlq.NewScheduler(repo, nil, testPolicy(t), dlq.SchedulerConfig{
			Interval: time.Minute, Batch: 10, ClaimHold: time.Minute,
		}, zerolog.Nop())
		assert.ErrorContains(t, err, "remediator is required")
	})

	t.Run("error - missing backoff policy", func(t *testing.T) {
		remediator := mocks.NewRemediator(t)
		_, err := dlq.NewScheduler(repo, remediator, nil, dlq.SchedulerConfig{
			Interval: time.Minute, Batch: 10, ClaimHold: time.Minute,
		}, zerolog.Nop())
		assert.ErrorContains(t, err, "backoff policy is required")
	})

	t.Run("error - invalid config", func(t *testing.T) {
		remediator := mocks.NewRemediator(t)
		_, err := dlq.NewScheduler(repo, remediator, testPolicy(t), dlq.SchedulerConfig{}, zerolog.Nop())
		assert.ErrorContains(t, err, "interval must be positive")
	})
}
