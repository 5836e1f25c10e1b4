// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run a real Postgres server so the
// production driver path of the rating store is exercised, not only the
// embedded DuckDB used by unit tests.
//
// All files carry the integration build tag:
//
//	go test -tags integration ./internal/database/...
//
// # Postgres Container
//
//	func TestRatingsOnPostgres(t *testing.T) {
//	    pg := testinfra.StartPostgres(t)
//	    db, err := database.New(&config.DatabaseConfig{
//	        Driver: config.DriverPostgres,
//	        URL:    pg.URL,
//	    })
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls the
// image; later runs use the local cache.
package testinfra
