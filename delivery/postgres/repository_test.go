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

	"github.com/marcelsud/webhook-exchange/delivery"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepositoryWithDB(db), mock
}

func sampleResult() delivery.Result {
	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return delivery.Result{
		WebhookID:  "evt-1:orders",
		Success:    true,
		StatusCode: 200,
		Duration:   350 * time.Millisecond,
		Attempts: []delivery.Attempt{
			{
				Number:          1,
				StartedAt:       started,
				URL:             "https://example.com/hook",
				RequestHeaders:  map[string]string{"Content-Type": "application/json"},
				RequestBody:     []byte(`{"kind":"run.completed"}`),
				StatusCode:      503,
				ResponseHeaders: map[string]string{"Retry-After": "1"},
				ResponseBody:    "try later",
				Latency:         120 * time.Millisecond,
				Error:           "HTTP 503",
			},
			{
				Number:      2,
				StartedAt:   started.Add(time.Second),
				URL:         "https://example.com/hook",
				RequestBody: []byte(`{"kind":"run.completed"}`),
				StatusCode:  200,
				Latency:     80 * time.Millisecond,
			},
		},
	}
}

func TestRepositoryRecord(t *testing.T) {
	t.Run("success - result and attempts stored in one transaction", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		result := sampleResult()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (webhook_id) DO UPDATE")).
			WithArgs(result.WebhookID, true, 200, int64(350), "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM delivery_attempts")).
			WithArgs(result.WebhookID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO delivery_attempts")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO delivery_attempts")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Record(context.Background(), result)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - later cycle under the same webhook id supersedes the first", func(t *testing.T) {
		// Webhook ids stay stable across processing retries, so recording a
		// second cycle must land as an update, never a key conflict
		repo, mock := newMockRepository(t)
		first := sampleResult()
		first.Success = false
		first.StatusCode = 503
		first.Error = "exhausted 2 delivery attempts"
		second := sampleResult()

		for _, cycle := range []delivery.Result{first, second} {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (webhook_id) DO UPDATE")).
				WithArgs(cycle.WebhookID, cycle.Success, cycle.StatusCode, int64(350), cycle.Error).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM delivery_attempts")).
				WithArgs(cycle.WebhookID).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO delivery_attempts")).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO delivery_attempts")).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
		}

		require.NoError(t, repo.Record(context.Background(), first))
		require.NoError(t, repo.Record(context.Background(), second))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - attempt insert failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		result := sampleResult()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (webhook_id) DO UPDATE")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM delivery_attempts")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO delivery_attempts")).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.Record(context.Background(), result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inserting delivery attempt 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoryGet(t *testing.T) {
	t.Run("success - attempts in chronological order", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		resultRows := sqlmock.NewRows([]string{
			"webhook_id", "success", "status_code", "duration_ms", "error",
		}).AddRow("evt-1:orders", true, 200, int64(350), "")
		mock.ExpectQuery(regexp.QuoteMeta("FROM delivery_results")).
			WithArgs("evt-1:orders").
			WillReturnRows(resultRows)

		attemptRows := sqlmock.NewRows([]string{
			"attempt_number", "started_at", "url", "request_headers", "request_body",
			"status_code", "response_headers", "response_body", "latency_ms", "error", "network_error",
		}).
			AddRow(1, time.Now(), "https://example.com/hook", []byte(`{"A":"1"}`), []byte(`{}`),
				503, []byte(`{"Retry-After":"1"}`), "try later", int64(120), "HTTP 503", false).
			AddRow(2, time.Now(), "https://example.com/hook", []byte(`{}`), []byte(`{}`),
				200, []byte(`{}`), "", int64(80), "", false)
		mock.ExpectQuery(regexp.QuoteMeta("FROM delivery_attempts")).
			WithArgs("evt-1:orders").
			WillReturnRows(attemptRows)

		result, err := repo.Get(context.Background(), "evt-1:orders")
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.Len(t, result.Attempts, 2)
		assert.Equal(t, 1, result.Attempts[0].Number)
		assert.Equal(t, "1", result.Attempts[0].ResponseHeaders["Retry-After"])
		assert.Equal(t, 120*time.Millisecond, result.Attempts[0].Latency)
		assert.Equal(t, 200, result.Attempts[1].StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - unknown webhook id", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM delivery_results")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{
				"webhook_id", "success", "status_code", "duration_ms", "error",
			}))

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, delivery.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
