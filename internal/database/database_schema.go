// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
database_schema.go - Database Schema Management

Tables:
  - users: registered readers, keyed by a caller-assigned numeric ID
  - books: the catalogue, keyed by ISBN with an optional author, year and publisher
  - ratings: one explicit score per (user, book), 0 through 10

There are no foreign keys. DuckDB rejects updates to rows referenced by a
foreign key, which breaks the rating upsert, so existence of the user and
book is checked inside the upsert statement instead.

Indexes on ratings are added by versioned migrations in migrations.go.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements. Every
// statement is valid for both Postgres and DuckDB.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			location TEXT,
			age INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS books (
			isbn TEXT PRIMARY KEY,
			book_title TEXT NOT NULL,
			book_author TEXT,
			year_of_publication INTEGER,
			publisher TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS ratings (
			user_id BIGINT NOT NULL,
			isbn TEXT NOT NULL,
			rating INTEGER NOT NULL CHECK (rating >= 0 AND rating <= 10),
			PRIMARY KEY (user_id, isbn)
		)`,
	}
}
