package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/marcelsud/webhook-exchange/intake"
)

/* PostgreSQL implementation of intake.Repository
 * The unique index on dedup_hash arbitrates concurrent identical submissions;
 * the conditional UPDATE on claim arbitrates competing workers. Application
 * code never does check-then-insert
 */

const eventColumns = `id, workflow_id, agent_id, event_offset, payload, signature_valid,
	dedup_hash, received_at, processed_at, status, http_status, error,
	attempt_count, max_attempts, next_attempt_at`

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
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Insert stores a new event, treating a dedup_hash conflict as "not new"
// On conflict the previously stored event is returned with ErrDuplicate
func (r *Repository) Insert(ctx context.Context, event intake.Event) (intake.Event, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO inbound_events
		 (id, workflow_id, agent_id, event_offset, payload, signature_valid, dedup_hash,
		  received_at, status, http_status, error, attempt_count, max_attempts, next_attempt_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (dedup_hash) DO NOTHING`,
		event.ID, event.WorkflowID, event.AgentID, nullableOffset(event.Offset), event.Payload,
		event.SignatureValid, event.DedupHash, event.ReceivedAt, event.Status.String(),
		event.HTTPStatus, event.Error, event.AttemptCount, event.MaxAttempts, event.NextAttemptAt,
	)
	if err != nil {
		return intake.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return intake.Event{}, fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := r.GetByDedupHash(ctx, event.DedupHash)
		if err != nil {
			return intake.Event{}, fmt.Errorf("loading existing event for dedup hash: %w", err)
		}
		return existing, intake.ErrDuplicate
	}

	return event, nil
}

// Claim atomically moves a due queued event to processing
// The deadline becomes the claim lease: until it passes, no other worker
// touches the row; after it passes, ReclaimExpired takes the row back
func (r *Repository) Claim(ctx context.Context, id string, now, deadline time.Time) (intake.Event, bool, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE inbound_events
		 SET status = 'processing', attempt_count = attempt_count + 1, next_attempt_at = $3
		 WHERE id = $1 AND status = 'queued' AND next_attempt_at <= $2
		 RETURNING `+eventColumns,
		id, now, deadline,
	)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return intake.Event{}, false, nil
	}
	if err != nil {
		return intake.Event{}, false, fmt.Errorf("claiming event: %w", err)
	}
	return event, true, nil
}

// ReclaimExpired re-queues processing events whose claim lease has passed
// Rows are locked with SKIP LOCKED so concurrent sweeps split the batch
func (r *Repository) ReclaimExpired(ctx context.Context, now time.Time, limit int) ([]intake.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		`UPDATE inbound_events
		 SET status = 'queued'
		 WHERE id IN (
			SELECT id FROM inbound_events
			WHERE status = 'processing' AND next_attempt_at <= $1
			ORDER BY next_attempt_at LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+eventColumns,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("reclaiming expired events: %w", err)
	}
	defer rows.Close()

	var events []intake.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reclaimed event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reclaimed events: %w", err)
	}
	return events, nil
}

// MarkCompleted finishes a processing event
func (r *Repository) MarkCompleted(ctx context.Context, id string, processedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE inbound_events SET status = 'completed', processed_at = $2, error = ''
		 WHERE id = $1 AND status = 'processing'`,
		id, processedAt,
	)
	if err != nil {
		return fmt.Errorf("marking event completed: %w", err)
	}
	return nil
}

// MarkFailed records a terminal processing failure
func (r *Repository) MarkFailed(ctx context.Context, id string, errText string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE inbound_events SET status = 'failed', error = $2
		 WHERE id = $1 AND status = 'processing'`,
		id, errText,
	)
	if err != nil {
		return fmt.Errorf("marking event failed: %w", err)
	}
	return nil
}

// Requeue schedules another attempt after a backoff wait
func (r *Repository) Requeue(ctx context.Context, id string, errText string, nextAttemptAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE inbound_events SET status = 'queued', error = $2, next_attempt_at = $3
		 WHERE id = $1 AND status = 'processing'`,
		id, errText, nextAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("requeueing event: %w", err)
	}
	return nil
}

// Redrive revives a failed event with a fresh attempt budget
func (r *Repository) Redrive(ctx context.Context, id string, now time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE inbound_events
		 SET status = 'queued', attempt_count = 0, error = '', next_attempt_at = $2
		 WHERE id = $1 AND status = 'failed'`,
		id, now,
	)
	if err != nil {
		return false, fmt.Errorf("redriving event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading redrive result: %w", err)
	}
	return affected > 0, nil
}

// Get retrieves an event by ID
func (r *Repository) Get(ctx context.Context, id string) (intake.Event, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM inbound_events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return intake.Event{}, intake.ErrNotFound
	}
	if err != nil {
		return intake.Event{}, fmt.Errorf("selecting event: %w", err)
	}
	return event, nil
}

// GetByDedupHash retrieves an event by its dedup fingerprint
func (r *Repository) GetByDedupHash(ctx context.Context, hash string) (intake.Event, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM inbound_events WHERE dedup_hash = $1`, hash)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return intake.Event{}, intake.ErrNotFound
	}
	if err != nil {
		return intake.Event{}, fmt.Errorf("selecting event by dedup hash: %w", err)
	}
	return event, nil
}

// ListDueQueued returns queued events whose next attempt is due
func (r *Repository) ListDueQueued(ctx context.Context, now time.Time, limit int) ([]intake.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM inbound_events
		 WHERE status = 'queued' AND next_attempt_at <= $1
		 ORDER BY next_attempt_at LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing due events: %w", err)
	}
	defer rows.Close()

	var events []intake.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning due event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due events: %w", err)
	}
	return events, nil
}

// StatusCounts returns the number of events per status
func (r *Repository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM inbound_events GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting events by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return counts, nil
}

// PurgeCompletedBefore removes completed events older than the cutoff
func (r *Repository) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM inbound_events WHERE status = 'completed' AND processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging completed events: %w", err)
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return purged, nil
}

// CreateTable creates the inbound_events table if it does not exist
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inbound_events (
			id UUID PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			event_offset BIGINT,
			payload BYTEA NOT NULL,
			signature_valid BOOLEAN NOT NULL,
			dedup_hash TEXT NOT NULL UNIQUE,
			received_at TIMESTAMPTZ NOT NULL,
			processed_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			http_status INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			attempt_count INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL,
			next_attempt_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS inbound_events_due_idx
			ON inbound_events (next_attempt_at) WHERE status = 'queued'
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating inbound_events table: %w", err)
	}
	return nil
}

// DropTable removes the inbound_events table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS inbound_events CASCADE")
	if err != nil {
		return fmt.Errorf("dropping inbound_events table: %w", err)
	}
	return nil
}

// Close closes the database handle
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (intake.Event, error) {
	var event intake.Event
	var offset sql.NullInt64
	var processedAt sql.NullTime
	var status string

	err := s.Scan(&event.ID, &event.WorkflowID, &event.AgentID, &offset, &event.Payload,
		&event.SignatureValid, &event.DedupHash, &event.ReceivedAt, &processedAt, &status,
		&event.HTTPStatus, &event.Error, &event.AttemptCount, &event.MaxAttempts, &event.NextAttemptAt)
	if err != nil {
		return intake.Event{}, err
	}

	if offset.Valid {
		value := offset.Int64
		event.Offset = &value
	}
	if processedAt.Valid {
		value := processedAt.Time
		event.ProcessedAt = &value
	}
	event.Status = intake.NewStatus(status)
	return event, nil
}

func nullableOffset(offset *int64) sql.NullInt64 {
	if offset == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *offset, Valid: true}
}
