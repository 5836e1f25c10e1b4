// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package database provides the rating store: users, books and ratings held
in PostgreSQL (through the pgx stdlib driver) or an embedded DuckDB file.

Both drivers run the same SQL. Statements use numbered placeholders ($1)
and only types both engines share.

# Schema

  - users(user_id BIGINT PK, location, age)
  - books(isbn TEXT PK, book_title, book_author, year_of_publication, publisher)
  - ratings(user_id, isbn, rating 0..10, PK(user_id, isbn))
  - schema_migrations: applied versioned migrations

# Write Operations

  - CreateUser / CreateBook: insert, ErrAlreadyExists on a duplicate key
  - UpsertRating: insert or replace a score, ErrNotFound when the user or book is missing

# Recommendation Providers

DB implements recommend.ItemProvider and recommend.RatingSource:

  - GetAllItems: the catalogue ordered by ISBN
  - GetRatedItemIDs: every book a user has rated, including 0 ratings
  - GetRatingsAboveThreshold: ratings strictly above a threshold, ordered by user then ISBN

Connection failures are wrapped with recommend.ErrDataSourceUnavailable.
BreakerStore adds a circuit breaker (sony/gobreaker) in front of the
providers so an unreachable store fails fast.

# Usage Example

	db, err := database.New(&cfg.Database)
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()

	store := database.NewBreakerStore(db, cfg.Recommend.Breaker)
	engine, err := recommend.NewEngine(cfg.RecommendConfig(), store, logger)

# Testing

Unit tests use an in-memory DuckDB database. Tests against PostgreSQL live
in internal/testinfra behind the integration build tag.
*/
package database
