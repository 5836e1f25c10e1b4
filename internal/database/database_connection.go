// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"runtime"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
)

// configureConnectionPool sets connection pool parameters from config.
// Zero values fall back to NumCPU open connections, 2 idle connections
// and a one hour lifetime.
func (db *DB) configureConnectionPool() {
	maxOpen := db.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	maxIdle := db.cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 2
	}
	lifetime := db.cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	idleTime := 5 * time.Minute

	// An in-memory DuckDB database exists per connection. Pin the pool to
	// one connection so every statement sees the same tables.
	if db.driver == config.DriverDuckDB && (db.cfg.Path == "" || db.cfg.Path == ":memory:") {
		maxOpen, maxIdle = 1, 1
		lifetime, idleTime = 0, 0
	}

	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(maxIdle)
	db.conn.SetConnMaxLifetime(lifetime)
	db.conn.SetConnMaxIdleTime(idleTime)
}

// queryTimeout bounds statements issued without a caller deadline.
func (db *DB) queryTimeout() time.Duration {
	if db.cfg.QueryTimeout > 0 {
		return db.cfg.QueryTimeout
	}
	return 30 * time.Second
}
