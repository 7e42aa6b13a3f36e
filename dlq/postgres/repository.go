package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/marcelsud/webhook-exchange/dlq"
)

// PostgreSQL implementation of dlq.Repository

const entryColumns = `id, source, ref_id, payload, reason, failure_count, max_retries,
	next_retry_at, resolved, resolution, resolved_at, created_at, updated_at`

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

// Insert stores a new dead letter entry
func (r *Repository) Insert(ctx context.Context, entry dlq.Entry) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO dlq_entries
		 (id, source, ref_id, payload, reason, failure_count, max_retries,
		  next_retry_at, resolved, resolution, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, '', $9, $10)`,
		entry.ID, entry.Source.String(), entry.RefID, entry.Payload, entry.Reason,
		entry.FailureCount, entry.MaxRetries, entry.NextRetryAt, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting dead letter entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID
func (r *Repository) Get(ctx context.Context, id string) (dlq.Entry, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM dlq_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return dlq.Entry{}, dlq.ErrNotFound
	}
	if err != nil {
		return dlq.Entry{}, fmt.Errorf("selecting dead letter entry: %w", err)
	}
	return entry, nil
}

// List returns unresolved entries, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]dlq.Entry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dlq_entries
		 WHERE resolved = false ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing dead letter entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListDue returns unresolved entries eligible for automatic remediation
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]dlq.Entry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dlq_entries
		 WHERE resolved = false AND failure_count < max_retries AND next_retry_at <= $1
		 ORDER BY next_retry_at LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ClaimDue picks due entries and pushes their next_retry_at forward so
// concurrent scheduler instances do not work the same entry
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, hold time.Duration, limit int) ([]dlq.Entry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`UPDATE dlq_entries SET next_retry_at = $2, updated_at = $1
		 WHERE id IN (
			SELECT id FROM dlq_entries
			WHERE resolved = false AND failure_count < max_retries AND next_retry_at <= $1
			ORDER BY next_retry_at LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+entryColumns,
		now, now.Add(hold), limit)
	if err != nil {
		return nil, fmt.Errorf("claiming due entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// RecordFailure notes a failed remediation attempt and reschedules the entry
func (r *Repository) RecordFailure(ctx context.Context, id string, reason string, nextRetryAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE dlq_entries
		 SET failure_count = failure_count + 1, reason = $2, next_retry_at = $3, updated_at = $4
		 WHERE id = $1 AND resolved = false`,
		id, reason, nextRetryAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording remediation failure: %w", err)
	}
	return nil
}

// Resolve closes an entry; resolving twice is an error
func (r *Repository) Resolve(ctx context.Context, id string, resolution dlq.Resolution, resolvedAt time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE dlq_entries
		 SET resolved = true, resolution = $2, resolved_at = $3, updated_at = $3
		 WHERE id = $1 AND resolved = false`,
		id, resolution.String(), resolvedAt)
	if err != nil {
		return fmt.Errorf("resolving dead letter entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return dlq.ErrResolved
	}
	return nil
}

// Depth counts unresolved entries, used for metrics
func (r *Repository) Depth(ctx context.Context) (int64, error) {
	var depth int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dlq_entries WHERE resolved = false`).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("counting unresolved entries: %w", err)
	}
	return depth, nil
}

// CreateTable creates the dlq_entries table if it does not exist
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS dlq_entries (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			ref_id TEXT NOT NULL,
			payload BYTEA,
			reason TEXT NOT NULL,
			failure_count INTEGER NOT NULL DEFAULT 0,
			max_retries INTEGER NOT NULL,
			next_retry_at TIMESTAMPTZ NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT false,
			resolution TEXT NOT NULL DEFAULT '',
			resolved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS dlq_entries_due_idx
			ON dlq_entries (next_retry_at) WHERE resolved = false
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating dlq_entries table: %w", err)
	}
	return nil
}

// DropTable removes the dlq_entries table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS dlq_entries CASCADE")
	if err != nil {
		return fmt.Errorf("dropping dlq_entries table: %w", err)
	}
	return nil
}

// Close closes the database handle
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (dlq.Entry, error) {
	var entry dlq.Entry
	var source, resolution string
	var resolvedAt sql.NullTime

	err := s.Scan(&entry.ID, &source, &entry.RefID, &entry.Payload, &entry.Reason,
		&entry.FailureCount, &entry.MaxRetries, &entry.NextRetryAt, &entry.Resolved,
		&resolution, &resolvedAt, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return dlq.Entry{}, err
	}

	entry.Source = dlq.NewSource(source)
	entry.Resolution = dlq.NewResolution(resolution)
	if resolvedAt.Valid {
		value := resolvedAt.Time
		entry.ResolvedAt = &value
	}
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]dlq.Entry, error) {
	var entries []dlq.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dead letter entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dead letter entries: %w", err)
	}
	return entries, nil
}
