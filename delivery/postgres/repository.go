package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/marcelsud/webhook-exchange/delivery"
)

/* PostgreSQL implementation of delivery.Repository
 * One row per finalized result, attempts in a child table keyed by
 * (webhook_id, attempt_number) so chronological order survives round trips
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new PostgreSQL repository with default pool settings
func NewRepository(connectionString string) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Repository{DB: db}, nil
}

// NewRepositoryWithDB wraps an existing database handle
// Useful when several repositories share one pool
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Record stores a finalized result and its attempts atomically
// Webhook ids are stable across processing retries, so a later cycle for the
// same id supersedes the earlier one instead of conflicting with it
func (r *Repository) Record(ctx context.Context, result delivery.Result) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO delivery_results (webhook_id, success, status_code, duration_ms, error)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (webhook_id) DO UPDATE SET
			success = EXCLUDED.success,
			status_code = EXCLUDED.status_code,
			duration_ms = EXCLUDED.duration_ms,
			error = EXCLUDED.error,
			finished_at = now()`,
		result.WebhookID, result.Success, result.StatusCode, result.Duration.Milliseconds(), result.Error,
	)
	if err != nil {
		return fmt.Errorf("upserting delivery result: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM delivery_attempts WHERE webhook_id = $1`,
		result.WebhookID,
	); err != nil {
		return fmt.Errorf("clearing superseded delivery attempts: %w", err)
	}

	for _, attempt := range result.Attempts {
		requestHeaders, err := json.Marshal(attempt.RequestHeaders)
		if err != nil {
			return fmt.Errorf("marshaling request headers: %w", err)
		}
		responseHeaders, err := json.Marshal(attempt.ResponseHeaders)
		if err != nil {
			return fmt.Errorf("marshaling response headers: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO delivery_attempts
			 (webhook_id, attempt_number, started_at, url, request_headers, request_body,
			  status_code, response_headers, response_body, latency_ms, error, network_error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			result.WebhookID, attempt.Number, attempt.StartedAt, attempt.URL,
			requestHeaders, attempt.RequestBody, attempt.StatusCode, responseHeaders,
			attempt.ResponseBody, attempt.Latency.Milliseconds(), attempt.Error, attempt.NetworkError,
		)
		if err != nil {
			return fmt.Errorf("inserting delivery attempt %d: %w", attempt.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delivery result: %w", err)
	}
	return nil
}

// Get retrieves a result with its attempts in chronological order
func (r *Repository) Get(ctx context.Context, webhookID string) (delivery.Result, error) {
	var result delivery.Result
	var durationMs int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT webhook_id, success, status_code, duration_ms, error
		 FROM delivery_results WHERE webhook_id = $1`,
		webhookID,
	).Scan(&result.WebhookID, &result.Success, &result.StatusCode, &durationMs, &result.Error)
	if err == sql.ErrNoRows {
		return delivery.Result{}, delivery.ErrNotFound
	}
	if err != nil {
		return delivery.Result{}, fmt.Errorf("selecting delivery result: %w", err)
	}
	result.Duration = time.Duration(durationMs) * time.Millisecond

	rows, err := r.DB.QueryContext(ctx,
		`SELECT attempt_number, started_at, url, request_headers, request_body,
		        status_code, response_headers, response_body, latency_ms, error, network_error
		 FROM delivery_attempts WHERE webhook_id = $1 ORDER BY attempt_number`,
		webhookID,
	)
	if err != nil {
		return delivery.Result{}, fmt.Errorf("selecting delivery attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attempt delivery.Attempt
		var requestHeaders, responseHeaders []byte
		var latencyMs int64
		err := rows.Scan(&attempt.Number, &attempt.StartedAt, &attempt.URL, &requestHeaders,
			&attempt.RequestBody, &attempt.StatusCode, &responseHeaders, &attempt.ResponseBody,
			&latencyMs, &attempt.Error, &attempt.NetworkError)
		if err != nil {
			return delivery.Result{}, fmt.Errorf("scanning delivery attempt: %w", err)
		}
		if len(requestHeaders) > 0 {
			if err := json.Unmarshal(requestHeaders, &attempt.RequestHeaders); err != nil {
				return delivery.Result{}, fmt.Errorf("unmarshaling request headers: %w", err)
			}
		}
		if len(responseHeaders) > 0 {
			if err := json.Unmarshal(responseHeaders, &attempt.ResponseHeaders); err != nil {
				return delivery.Result{}, fmt.Errorf("unmarshaling response headers: %w", err)
			}
		}
		attempt.Latency = time.Duration(latencyMs) * time.Millisecond
		result.Attempts = append(result.Attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return delivery.Result{}, fmt.Errorf("iterating delivery attempts: %w", err)
	}

	return result, nil
}

// CreateTable creates the delivery tables if they do not exist
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS delivery_results (
			webhook_id TEXT PRIMARY KEY,
			success BOOLEAN NOT NULL,
			status_code INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS delivery_attempts (
			webhook_id TEXT NOT NULL REFERENCES delivery_results (webhook_id) ON DELETE CASCADE,
			attempt_number INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			url TEXT NOT NULL,
			request_headers JSONB,
			request_body BYTEA,
			status_code INTEGER NOT NULL,
			response_headers JSONB,
			response_body BYTEA,
			latency_ms BIGINT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			network_error BOOLEAN NOT NULL,
			PRIMARY KEY (webhook_id, attempt_number)
		)
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating delivery tables: %w", err)
	}
	return nil
}

// DropTable removes the delivery tables (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx,
		"DROP TABLE IF EXISTS delivery_attempts, delivery_results CASCADE")
	if err != nil {
		return fmt.Errorf("dropping delivery tables: %w", err)
	}
	return nil
}

// Close closes the database handle
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}
