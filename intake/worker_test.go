package intake_test

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
	"github.com/marcelsud/webhook-exchange/intake"
	"github.com/marcelsud/webhook-exchange/intake/mocks"
)

func newWorkerPolicy(t *testing.T) *backoff.Policy {
	t.Helper()
	policy, err := backoff.New(backoff.Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Factor:       2,
		Jitter:       0,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return policy
}

func newTestWorker(t *testing.T, repo *mocks.Repository, queue *mocks.Queue, processor intake.Processor, dlq *mocks.DeadLetter) *intake.Worker {
	t.Helper()
	worker, err := intake.NewWorker(repo, queue, processor, newWorkerPolicy(t), dlq, intake.WorkerConfig{
		SweepInterval: time.Minute,
		SweepBatch:    100,
		ClaimLease:    time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	return worker
}

func TestWorkerConfigValidate(t *testing.T) {
	t.Run("zero sweep interval", func(t *testing.T) {
		err := intake.WorkerConfig{SweepBatch: 10}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweep interval")
	})

	t.Run("zero sweep batch", func(t *testing.T) {
		err := intake.WorkerConfig{SweepInterval: time.Second}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweep batch")
	})

	t.Run("zero claim lease", func(t *testing.T) {
		err := intake.WorkerConfig{SweepInterval: time.Second, SweepBatch: 10}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claim lease")
	})
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("successful processing completes the event", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dlq := mocks.NewDeadLetter(t)

		event := intake.Event{ID: "ev-1", Status: intake.Processing, AttemptCount: 1, MaxAttempts: 3}
		repo.On("Claim", ctx, "ev-1", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(event, true, nil)
		repo.On("MarkCompleted", ctx, "ev-1", mock.AnythingOfType("time.Time")).Return(nil)

		var processed intake.Event
		processor := intake.ProcessorFunc(func(ctx context.Context, ev intake.Event) error {
			processed = ev
			return nil
		})

		worker := newTestWorker(t, repo, queue, processor, dlq)
		require.NoError(t, worker.Handle(ctx, "ev-1"))
		assert.Equal(t, "ev-1", processed.ID)
	})

	t.Run("unclaimable event is skipped without processing", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dlq := mocks.NewDeadLetter(t)

		repo.On("Claim", ctx, "ev-2", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(intake.Event{}, false, nil)

		processor := intake.ProcessorFunc(func(ctx context.Context, ev intake.Event) error {
			t.Fatal("processor must not run for unclaimed events")
			return nil
		})

		worker := newTestWorker(t, repo, queue, processor, dlq)
		require.NoError(t, worker.Handle(ctx, "ev-2"))
	})

	t.Run("failure with remaining budget schedules a retry", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dlq := mocks.NewDeadLetter(t)

		event := intake.Event{ID: "ev-3", Status: intake.Processing, AttemptCount: 1, MaxAttempts: 3}
		repo.On("Claim", ctx, "ev-3", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(event, true, nil)

		before := time.Now()
		repo.On("Requeue", ctx, "ev-3", "boom", mock.MatchedBy(func(next time.Time) bool {
			// attempt 1 backoff is 100ms with jitter disabled
			return next.After(before.Add(50 * time.Millisecond))
		})).Return(nil)

		processor := intake.ProcessorFunc(func(ctx context.Context, ev intake.Event) error {
			return errors.New("boom")
		})

		worker := newTestWorker(t, repo, queue, processor, dlq)
		require.NoError(t, worker.Handle(ctx, "ev-3"))
	})

	t.Run("exhausted budget fails the event and parks it in the DLQ", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dlq := mocks.NewDeadLetter(t)

		event := intake.Event{ID: "ev-4", Status: intake.Processing, AttemptCount: 3, MaxAttempts: 3}
		repo.On("Claim", ctx, "ev-4", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(event, true, nil)
		repo.On("MarkFailed", ctx, "ev-4", mock.MatchedBy(func(reason string) bool {
			return reason != ""
		})).Return(nil)
		dlq.On("ParkEvent", ctx, intake.MatchEvent(func(ev intake.Event) bool {
			return ev.ID == "ev-4" && ev.Status == intake.Failed
		}), mock.MatchedBy(func(reason string) bool {
			return reason != ""
		})).Return(nil)

		processor := intake.ProcessorFunc(func(ctx context.Context, ev intake.Event) error {
			return errors.New("still broken")
		})

		worker := newTestWorker(t, repo, queue, processor, dlq)
		require.NoError(t, worker.Handle(ctx, "ev-4"))
	})

	t.Run("claim failure surfaces as error", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dlq := mocks.NewDeadLetter(t)

		repo.On("Claim", ctx, "ev-5", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(intake.Event{}, false, assert.AnError)

		worker := newTestWorker(t, repo, queue, intake.ProcessorFunc(func(ctx context.Context, ev intake.Event) error {
			return nil
		}), dlq)

		err := worker.Handle(ctx, "ev-5")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claiming event")
	})
}

func TestSweepReclaimsExpiredClaims(t *testing.T) {
	// An event claimed by a worker that died mid-flight must come back to
	// the queue once its lease runs out
	repo := mocks.NewRepository(t)
	queue := mocks.NewQueue(t)
	dlq := mocks.NewDeadLetter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stranded := intake.Event{ID: "ev-6", Status: intake.Queued, AttemptCount: 2, MaxAttempts: 5}
	repo.On("ReclaimExpired", mock.Anything, mock.AnythingOfType("time.Time"), 100).Return([]intake.Event{stranded}, nil)
	repo.On("ListDueQueued", mock.Anything, mock.AnythingOfType("time.Time"), 100).Return(nil, nil)

	enqueued := make(chan string, 1)
	queue.On("Enqueue", mock.Anything, "ev-6").Run(func(args mock.Arguments) {
		select {
		case enqueued <- args.String(1):
		default:
		}
	}).Return(nil)
	queue.On("Consume", mock.Anything).Return(func(ctx context.Context) []intake.Message {
		<-ctx.Done()
		return nil
	}, func(ctx context.Context) error {
		return ctx.Err()
	})

	worker, err := intake.NewWorker(repo, queue, intake.ProcessorFunc(func(context.Context, intake.Event) error {
		return nil
	}), newWorkerPolicy(t), dlq, intake.WorkerConfig{
		SweepInterval: 10 * time.Millisecond,
		SweepBatch:    100,
		ClaimLease:    time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case id := <-enqueued:
		assert.Equal(t, "ev-6", id)
	case <-time.After(2 * time.Second):
		t.Fatal("reclaimed event was never re-enqueued")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
