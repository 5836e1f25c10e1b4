// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	SQL         string    // SQL statement to execute
	AppliedAt   time.Time // When the migration was applied (populated on query)
}

// schemaMigrationsTable creates the migration tracking table
const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// getMigrations returns all versioned migrations in order.
//
// Migrations MUST be append-only - never modify or remove existing migrations
// once users have databases with data.
func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "idx_ratings_user_id",
			Description: "Index ratings by user for rated-item lookups",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_ratings_user_id ON ratings (user_id)`,
		},
		{
			Version:     2,
			Name:        "idx_ratings_isbn",
			Description: "Index ratings by book for existence checks and per-book aggregates",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_ratings_isbn ON ratings (isbn)`,
		},
	}
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schemaMigrationsTable)
	return err
}

// runVersionedMigrations executes only new migrations that haven't been applied yet.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	history, err := db.migrationHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	applied := make(map[int]struct{}, len(history))
	for _, m := range history {
		applied[m.Version] = struct{}{}
	}

	newMigrations := 0
	for _, m := range getMigrations() {
		if _, exists := applied[m.Version]; exists {
			continue
		}

		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}

		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES ($1, $2, $3)`,
			m.Version, m.Name, m.Description)
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}

		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("count", newMigrations).Msg("Applied database migrations")
	}

	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// GetMigrationHistory returns all applied migrations in order
func (db *DB) GetMigrationHistory(ctx context.Context) ([]Migration, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	history, err := db.migrationHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	return history, nil
}

func (db *DB) migrationHistory(ctx context.Context) ([]Migration, error) {
	return queryAndScan(ctx, db.conn,
		`SELECT version, name, COALESCE(description, ''), applied_at FROM schema_migrations ORDER BY version`,
		nil,
		func(rows rowScanner) (Migration, error) {
			var m Migration
			err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt)
			return m, err
		})
}
