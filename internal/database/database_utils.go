// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
)

// ensureContext applies the configured query timeout if ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), db.queryTimeout())
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, db.queryTimeout())
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint. It is a no-op for Postgres.
func (db *DB) Checkpoint(ctx context.Context) error {
	if db.driver != config.DriverDuckDB {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// RecordCounts holds the row count of each table.
type RecordCounts struct {
	Users   int64
	Books   int64
	Ratings int64
}

// GetRecordCounts returns the count of records in main tables
func (db *DB) GetRecordCounts(ctx context.Context) (RecordCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var counts RecordCounts
	targets := []struct {
		table string
		dest  *int64
	}{
		{"users", &counts.Users},
		{"books", &counts.Books},
		{"ratings", &counts.Ratings},
	}
	for _, target := range targets {
		start := time.Now()
		// Table names come from the fixed list above.
		err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+target.table).Scan(target.dest)
		observe("COUNT", target.table, start, err)
		if err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

// CountUsers returns the number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	observe("COUNT", "users", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
