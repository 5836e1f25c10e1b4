// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// DB wraps the rating store connection and provides data access methods.
// The same statements run against Postgres (pgx) and DuckDB.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	driver string
}

// New opens the configured store and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is nil")
	}

	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		driver: cfg.Driver,
	}

	db.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(context.Background(), db.queryTimeout())
	err = conn.PingContext(pingCtx)
	cancel()
	if err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Msg("Rating store ready")

	return db, nil
}

// dataSource returns the database/sql driver name and DSN for cfg.
func dataSource(cfg *config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return "pgx", cfg.URL, nil
	case config.DriverDuckDB:
		numThreads := cfg.Threads
		if numThreads <= 0 {
			numThreads = runtime.NumCPU()
		}

		// In-memory databases have no parent directory to create.
		if cfg.Path != "" && cfg.Path != ":memory:" {
			// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
			dbDir := filepath.Dir(cfg.Path)
			if dbDir != "" && dbDir != "." {
				if err := os.MkdirAll(dbDir, 0o750); err != nil {
					return "", "", fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
				}
			}
		}

		// Disable auto-install/auto-load to prevent hangs in restricted network environments.
		// The schema uses no extension types.
		dsn := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
			cfg.Path, numThreads, cfg.MaxMemory)
		return "duckdb", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection. DuckDB stores are checkpointed
// first so the WAL is flushed into the main database file.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.driver == config.DriverDuckDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	err := db.conn.PingContext(ctx)
	metrics.DBConnectionsInUse.Set(float64(db.conn.Stats().InUse))
	return err
}

// initialize creates tables and applies pending migrations
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	if db.driver == config.DriverDuckDB {
		ctx, cancel := schemaContext()
		defer cancel()
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
		}
	}

	return nil
}
