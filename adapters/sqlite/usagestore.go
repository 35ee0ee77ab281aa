package sqlite

import (
	"context"
	"time"

	"github.com/artpar/cmdgate/domain/usage"
	"github.com/artpar/cmdgate/ports"
)

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// RecordBatch stores multiple dispatch records.
func (s *UsageStore) RecordBatch(ctx context.Context, records []usage.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dispatches (
			id, command, channel, author, status, error_count, latency_ms, at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		// Store timestamps in UTC for consistent querying
		_, err := stmt.ExecContext(ctx,
			r.ID, r.Command, r.Channel, r.Author, string(r.Status),
			r.ErrorCount, r.LatencyMs, r.At.UTC(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Summary returns aggregated dispatches for a command over a period.
// An empty command aggregates across all commands.
func (s *UsageStore) Summary(ctx context.Context, command string, start, end time.Time) (usage.Summary, error) {
	// Format times as ISO8601 strings for SQLite comparison
	startStr := start.UTC().Format("2006-01-02 15:04:05")
	endStr := end.UTC().Format("2006-01-02 15:04:05")
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'dispatched' THEN 1 ELSE 0 END), 0) as dispatched,
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) as rejected,
			COALESCE(SUM(CASE WHEN status = 'throttled' THEN 1 ELSE 0 END), 0) as throttled,
			COALESCE(SUM(CASE WHEN status = 'unknown' THEN 1 ELSE 0 END), 0) as unknown,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed,
			COALESCE(SUM(error_count), 0) as error_count,
			CAST(COALESCE(AVG(CASE WHEN status IN ('dispatched', 'failed') THEN latency_ms END), 0) AS INTEGER) as avg_latency
		FROM dispatches
		WHERE (? = '' OR command = ?) AND datetime(at) >= datetime(?) AND datetime(at) < datetime(?)
	`, command, command, startStr, endStr)

	var summary usage.Summary
	summary.Command = command
	summary.PeriodStart = start
	summary.PeriodEnd = end

	err := row.Scan(
		&summary.Total,
		&summary.Dispatched,
		&summary.Rejected,
		&summary.Throttled,
		&summary.Unknown,
		&summary.Failed,
		&summary.ErrorCount,
		&summary.AvgLatencyMs,
	)
	if err != nil {
		return usage.Summary{}, err
	}

	return summary, nil
}

// Recent returns the most recent dispatch records, newest first.
func (s *UsageStore) Recent(ctx context.Context, limit int) ([]usage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, channel, author, status, error_count, latency_ms, at
		FROM dispatches
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var r usage.Record
		var status string

		err := rows.Scan(
			&r.ID, &r.Command, &r.Channel, &r.Author, &status,
			&r.ErrorCount, &r.LatencyMs, &r.At,
		)
		if err != nil {
			return nil, err
		}
		r.Status = usage.Status(status)

		records = append(records, r)
	}

	return records, rows.Err()
}

// Cleanup removes dispatch records older than the given time.
func (s *UsageStore) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM dispatches WHERE datetime(at) < datetime(?)
	`, olderThan.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
