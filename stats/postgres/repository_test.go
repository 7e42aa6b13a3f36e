//go:build !integration

package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/webhook-exchange/stats"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepositoryWithDB(db), mock
}

func TestRepositoryAggregate(t *testing.T) {
	repo, mock := newMockRepository(t)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM inbound_events")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"count", "completed", "failed", "sig_valid", "sig_invalid", "workflows", "agents",
		}).AddRow(120, 110, 4, 118, 2, 6, 3))
	mock.ExpectQuery(regexp.QuoteMeta("FROM delivery_results")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"succeeded", "failed"}).AddRow(95, 5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM delivery_attempts")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg", "min", "max"}).AddRow(130, 84, 12, 410))

	rollup, err := repo.Aggregate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(120), rollup.EventsReceived)
	assert.Equal(t, int64(110), rollup.EventsCompleted)
	assert.Equal(t, int64(4), rollup.EventsFailed)
	assert.Equal(t, int64(118), rollup.SignatureValid)
	assert.Equal(t, int64(2), rollup.SignatureInvalid)
	assert.Equal(t, int64(6), rollup.UniqueWorkflows)
	assert.Equal(t, int64(3), rollup.UniqueAgents)
	assert.Equal(t, int64(95), rollup.DeliveriesSucceeded)
	assert.Equal(t, int64(5), rollup.DeliveriesFailed)
	assert.Equal(t, int64(130), rollup.DeliveryAttempts)
	assert.Equal(t, int64(84), rollup.AvgLatencyMs)
	assert.Equal(t, int64(12), rollup.MinLatencyMs)
	assert.Equal(t, int64(410), rollup.MaxLatencyMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpsert(t *testing.T) {
	repo, mock := newMockRepository(t)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (period_start, period_end) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), stats.Rollup{
		PeriodStart:    start,
		PeriodEnd:      start.Add(time.Hour),
		EventsReceived: 120,
		ComputedAt:     start.Add(time.Hour + time.Minute),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var rollupColumnNames = []string{
	"period_start", "period_end", "events_received", "events_completed",
	"events_failed", "signature_valid", "signature_invalid",
	"unique_workflows", "unique_agents", "deliveries_succeeded",
	"deliveries_failed", "delivery_attempts", "avg_latency_ms",
	"min_latency_ms", "max_latency_ms", "computed_at",
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newMockRepository(t)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("error - missing period", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM stats_rollups")).
			WithArgs(start, end).
			WillReturnRows(sqlmock.NewRows(rollupColumnNames))

		_, err := repo.Get(context.Background(), start, end)
		assert.ErrorIs(t, err, stats.ErrNotFound)
	})
}

func TestRepositoryLatest(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("success - newest period returned", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY period_end DESC LIMIT 1")).
			WillReturnRows(sqlmock.NewRows(rollupColumnNames).AddRow(
				start, end, 120, 110, 4, 118, 2, 6, 3, 95, 5, 130, 84, 12, 410, end.Add(time.Minute),
			))

		latest, err := repo.Latest(context.Background())
		require.NoError(t, err)
		assert.True(t, latest.PeriodEnd.Equal(end))
		assert.Equal(t, int64(120), latest.EventsReceived)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - empty store", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY period_end DESC LIMIT 1")).
			WillReturnRows(sqlmock.NewRows(rollupColumnNames))

		_, err := repo.Latest(context.Background())
		assert.ErrorIs(t, err, stats.ErrNotFound)
	})
}
