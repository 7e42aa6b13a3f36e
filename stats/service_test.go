package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/webhook-exchange/stats"
	"github.com/marcelsud/webhook-exchange/stats/mocks"
)

func newTestService(t *testing.T, repo stats.Repository) *stats.Service {
	t.Helper()
	service, err := stats.NewService(repo, stats.Config{Period: time.Hour}, zerolog.Nop())
	require.NoError(t, err)
	return service
}

func TestServiceRollupPeriod(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("success - aggregate stored with period bounds", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Aggregate", mock.Anything, start, end).Return(stats.Rollup{
			EventsReceived:      120,
			EventsCompleted:     110,
			EventsFailed:        4,
			SignatureValid:      118,
			SignatureInvalid:    2,
			UniqueWorkflows:     6,
			UniqueAgents:        3,
			DeliveriesSucceeded: 95,
			DeliveriesFailed:    5,
			DeliveryAttempts:    130,
			AvgLatencyMs:        84,
			MinLatencyMs:        12,
			MaxLatencyMs:        410,
		}, nil)
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r stats.Rollup) bool {
			return r.PeriodStart.Equal(start) &&
				r.PeriodEnd.Equal(end) &&
				r.EventsReceived == 120 &&
				!r.ComputedAt.IsZero()
		})).Return(nil)

		rollup, err := service.RollupPeriod(context.Background(), start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(120), rollup.EventsReceived)
		assert.False(t, rollup.Empty())
	})

	t.Run("success - recomputing a period is idempotent", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Aggregate", mock.Anything, start, end).Return(stats.Rollup{EventsReceived: 7}, nil).Twice()
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r stats.Rollup) bool {
			return r.EventsReceived == 7
		})).Return(nil).Twice()

		first, err := service.RollupPeriod(context.Background(), start, end)
		require.NoError(t, err)
		second, err := service.RollupPeriod(context.Background(), start, end)
		require.NoError(t, err)
		assert.Equal(t, first.EventsReceived, second.EventsReceived)
	})

	t.Run("error - inverted period bounds", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		_, err := service.RollupPeriod(context.Background(), end, start)
		assert.ErrorContains(t, err, "must be after start")
	})

	t.Run("error - aggregation failure surfaces", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Aggregate", mock.Anything, start, end).
			Return(stats.Rollup{}, errors.New("connection refused"))

		_, err := service.RollupPeriod(context.Background(), start, end)
		assert.ErrorContains(t, err, "aggregating period")
	})

	t.Run("error - store failure surfaces", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Aggregate", mock.Anything, start, end).Return(stats.Rollup{}, nil)
		repo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		_, err := service.RollupPeriod(context.Background(), start, end)
		assert.ErrorContains(t, err, "storing rollup")
	})
}

func TestServiceCatchUp(t *testing.T) {
	periodA := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	periodB := periodA.Add(time.Hour)
	periodC := periodB.Add(time.Hour)

	t.Run("success - delayed tick rolls up every closed period", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		// The newest stored rollup ends two periods ago, as if the
		// ticks for both following hours never fired
		repo.On("Latest", mock.Anything).Return(stats.Rollup{
			PeriodStart: periodA.Add(-time.Hour),
			PeriodEnd:   periodA,
		}, nil).Once()
		repo.On("Aggregate", mock.Anything, periodA, periodB).Return(stats.Rollup{EventsReceived: 3}, nil).Once()
		repo.On("Aggregate", mock.Anything, periodB, periodC).Return(stats.Rollup{EventsReceived: 8}, nil).Once()
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()

		require.NoError(t, service.CatchUp(context.Background(), periodC.Add(10*time.Minute)))
	})

	t.Run("success - empty store rolls up only the previous period", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Latest", mock.Anything).Return(stats.Rollup{}, stats.ErrNotFound).Once()
		repo.On("Aggregate", mock.Anything, periodB, periodC).Return(stats.Rollup{}, nil).Once()
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

		require.NoError(t, service.CatchUp(context.Background(), periodC))
	})

	t.Run("success - caught-up service does nothing", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Latest", mock.Anything).Return(stats.Rollup{PeriodEnd: periodC}, nil).Once()

		require.NoError(t, service.CatchUp(context.Background(), periodC.Add(time.Minute)))
	})

	t.Run("error - failed period is retried on the next call", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := newTestService(t, repo)

		repo.On("Latest", mock.Anything).Return(stats.Rollup{PeriodEnd: periodA}, nil).Once()
		repo.On("Aggregate", mock.Anything, periodA, periodB).
			Return(stats.Rollup{}, errors.New("connection refused")).Once()

		err := service.CatchUp(context.Background(), periodC)
		require.ErrorContains(t, err, "aggregating period")

		// The cursor did not advance past the failure
		repo.On("Aggregate", mock.Anything, periodA, periodB).Return(stats.Rollup{}, nil).Once()
		repo.On("Aggregate", mock.Anything, periodB, periodC).Return(stats.Rollup{}, nil).Once()
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()

		require.NoError(t, service.CatchUp(context.Background(), periodC))
	})
}

func TestNewService(t *testing.T) {
	t.Run("error - period below one minute", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		_, err := stats.NewService(repo, stats.Config{Period: time.Second}, zerolog.Nop())
		assert.ErrorContains(t, err, "at least one minute")
	})
}
