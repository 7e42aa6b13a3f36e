package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/marcelsud/webhook-exchange/stats"
)

/* PostgreSQL implementation of stats.Repository
 * Aggregation reads the live event and delivery tables; rollups land in
 * stats_rollups keyed by period bounds so recomputation is an upsert
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
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Aggregate computes the rollup for [start, end) from the live tables
func (r *Repository) Aggregate(ctx context.Context, start, end time.Time) (stats.Rollup, error) {
	rollup := stats.Rollup{PeriodStart: start, PeriodEnd: end}

	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COUNT(*) FILTER (WHERE status = 'failed'),
		        COUNT(*) FILTER (WHERE signature_valid),
		        COUNT(*) FILTER (WHERE NOT signature_valid),
		        COUNT(DISTINCT workflow_id),
		        COUNT(DISTINCT agent_id)
		 FROM inbound_events
		 WHERE received_at >= $1 AND received_at < $2`,
		start, end,
	).Scan(&rollup.EventsReceived, &rollup.EventsCompleted, &rollup.EventsFailed,
		&rollup.SignatureValid, &rollup.SignatureInvalid,
		&rollup.UniqueWorkflows, &rollup.UniqueAgents)
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("aggregating events: %w", err)
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM delivery_results
		 WHERE finished_at >= $1 AND finished_at < $2`,
		start, end,
	).Scan(&rollup.DeliveriesSucceeded, &rollup.DeliveriesFailed)
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("aggregating delivery results: %w", err)
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(latency_ms), 0)::bigint,
		        COALESCE(MIN(latency_ms), 0),
		        COALESCE(MAX(latency_ms), 0)
		 FROM delivery_attempts
		 WHERE started_at >= $1 AND started_at < $2`,
		start, end,
	).Scan(&rollup.DeliveryAttempts, &rollup.AvgLatencyMs,
		&rollup.MinLatencyMs, &rollup.MaxLatencyMs)
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("aggregating delivery attempts: %w", err)
	}

	return rollup, nil
}

// Upsert stores a rollup, replacing any previous run for the same period
func (r *Repository) Upsert(ctx context.Context, rollup stats.Rollup) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO stats_rollups
		 (period_start, period_end, events_received, events_completed, events_failed,
		  signature_valid, signature_invalid, unique_workflows, unique_agents,
		  deliveries_succeeded, deliveries_failed, delivery_attempts,
		  avg_latency_ms, min_latency_ms, max_latency_ms, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (period_start, period_end) DO UPDATE SET
		   events_received = EXCLUDED.events_received,
		   events_completed = EXCLUDED.events_completed,
		   events_failed = EXCLUDED.events_failed,
		   signature_valid = EXCLUDED.signature_valid,
		   signature_invalid = EXCLUDED.signature_invalid,
		   unique_workflows = EXCLUDED.unique_workflows,
		   unique_agents = EXCLUDED.unique_agents,
		   deliveries_succeeded = EXCLUDED.deliveries_succeeded,
		   deliveries_failed = EXCLUDED.deliveries_failed,
		   delivery_attempts = EXCLUDED.delivery_attempts,
		   avg_latency_ms = EXCLUDED.avg_latency_ms,
		   min_latency_ms = EXCLUDED.min_latency_ms,
		   max_latency_ms = EXCLUDED.max_latency_ms,
		   computed_at = EXCLUDED.computed_at`,
		rollup.PeriodStart, rollup.PeriodEnd, rollup.EventsReceived, rollup.EventsCompleted,
		rollup.EventsFailed, rollup.SignatureValid, rollup.SignatureInvalid,
		rollup.UniqueWorkflows, rollup.UniqueAgents,
		rollup.DeliveriesSucceeded, rollup.DeliveriesFailed, rollup.DeliveryAttempts,
		rollup.AvgLatencyMs, rollup.MinLatencyMs, rollup.MaxLatencyMs, rollup.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting rollup: %w", err)
	}
	return nil
}

// Get retrieves the rollup for the given period bounds
func (r *Repository) Get(ctx context.Context, start, end time.Time) (stats.Rollup, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+rollupColumns+` FROM stats_rollups
		 WHERE period_start = $1 AND period_end = $2`, start, end)
	rollup, err := scanRollup(row)
	if err == sql.ErrNoRows {
		return stats.Rollup{}, stats.ErrNotFound
	}
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("selecting rollup: %w", err)
	}
	return rollup, nil
}

// Latest retrieves the rollup covering the newest period
func (r *Repository) Latest(ctx context.Context) (stats.Rollup, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+rollupColumns+` FROM stats_rollups
		 ORDER BY period_end DESC LIMIT 1`)
	rollup, err := scanRollup(row)
	if err == sql.ErrNoRows {
		return stats.Rollup{}, stats.ErrNotFound
	}
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("selecting latest rollup: %w", err)
	}
	return rollup, nil
}

// ListRecent returns the latest rollups, newest period first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]stats.Rollup, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+rollupColumns+` FROM stats_rollups
		 ORDER BY period_start DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing rollups: %w", err)
	}
	defer rows.Close()

	var rollups []stats.Rollup
	for rows.Next() {
		rollup, err := scanRollup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rollup: %w", err)
		}
		rollups = append(rollups, rollup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rollups: %w", err)
	}
	return rollups, nil
}

// CreateTable creates the stats_rollups table if it does not exist
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS stats_rollups (
			period_start TIMESTAMPTZ NOT NULL,
			period_end TIMESTAMPTZ NOT NULL,
			events_received BIGINT NOT NULL,
			events_completed BIGINT NOT NULL,
			events_failed BIGINT NOT NULL,
			signature_valid BIGINT NOT NULL,
			signature_invalid BIGINT NOT NULL,
			unique_workflows BIGINT NOT NULL,
			unique_agents BIGINT NOT NULL,
			deliveries_succeeded BIGINT NOT NULL,
			deliveries_failed BIGINT NOT NULL,
			delivery_attempts BIGINT NOT NULL,
			avg_latency_ms BIGINT NOT NULL,
			min_latency_ms BIGINT NOT NULL,
			max_latency_ms BIGINT NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (period_start, period_end)
		)
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating stats_rollups table: %w", err)
	}
	return nil
}

// DropTable removes the stats_rollups table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS stats_rollups CASCADE")
	if err != nil {
		return fmt.Errorf("dropping stats_rollups table: %w", err)
	}
	return nil
}

// Close closes the database handle
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

const rollupColumns = `period_start, period_end, events_received, events_completed, events_failed,
	signature_valid, signature_invalid, unique_workflows, unique_agents,
	deliveries_succeeded, deliveries_failed, delivery_attempts,
	avg_latency_ms, min_latency_ms, max_latency_ms, computed_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRollup(s scanner) (stats.Rollup, error) {
	var rollup stats.Rollup
	err := s.Scan(&rollup.PeriodStart, &rollup.PeriodEnd, &rollup.EventsReceived,
		&rollup.EventsCompleted, &rollup.EventsFailed, &rollup.SignatureValid,
		&rollup.SignatureInvalid, &rollup.UniqueWorkflows, &rollup.UniqueAgents,
		&rollup.DeliveriesSucceeded, &rollup.DeliveriesFailed, &rollup.DeliveryAttempts,
		&rollup.AvgLatencyMs, &rollup.MinLatencyMs, &rollup.MaxLatencyMs,
		&rollup.ComputedAt)
	if err != nil {
		return stats.Rollup{}, err
	}
	return rollup, nil
}
