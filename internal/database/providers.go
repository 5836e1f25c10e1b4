// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// DB serves both sides of the recommendation pipeline.
var (
	_ recommend.ItemProvider = (*DB)(nil)
	_ recommend.RatingSource = (*DB)(nil)
)

// GetAllItems returns the catalogue as recommendation candidates, ordered
// by ISBN so equal scores keep a stable order.
func (db *DB) GetAllItems(ctx context.Context) ([]recommend.Item, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	items, err := queryAndScan(ctx, db.conn,
		`SELECT isbn, book_title, book_author, year_of_publication, publisher FROM books ORDER BY isbn`,
		nil,
		func(row rowScanner) (recommend.Item, error) {
			var (
				item      recommend.Item
				author    sql.NullString
				year      sql.NullInt64
				publisher sql.NullString
			)
			if err := row.Scan(&item.ItemID, &item.Title, &author, &year, &publisher); err != nil {
				return recommend.Item{}, err
			}
			item.Author = nullableString(author)
			item.PublicationYear = nullableInt(year)
			item.Publisher = nullableString(publisher)
			return item, nil
		})
	observe("SELECT", "books", start, err)
	if err != nil {
		return nil, db.wrapProviderError("list items", err)
	}
	return items, nil
}

// GetRatedItemIDs returns every book the user has rated, including
// implicit (0) ratings.
func (db *DB) GetRatedItemIDs(ctx context.Context, userID int64) (map[string]struct{}, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	ids, err := queryAndScan(ctx, db.conn,
		`SELECT isbn FROM ratings WHERE user_id = $1`,
		[]any{userID},
		func(row rowScanner) (string, error) {
			var id string
			err := row.Scan(&id)
			return id, err
		})
	observe("SELECT", "ratings", start, err)
	if err != nil {
		return nil, db.wrapProviderError("list rated items", err)
	}

	rated := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		rated[id] = struct{}{}
	}
	return rated, nil
}

// GetRatingsAboveThreshold returns ratings strictly greater than threshold,
// ordered by user then ISBN.
func (db *DB) GetRatingsAboveThreshold(ctx context.Context, threshold int) ([]recommend.Rating, error) {
	// Training reads the whole table, so only the caller's deadline applies.
	start := time.Now()
	ratings, err := queryAndScan(ctx, db.conn,
		`SELECT user_id, isbn, rating FROM ratings WHERE rating > $1 ORDER BY user_id, isbn`,
		[]any{threshold},
		func(row rowScanner) (recommend.Rating, error) {
			var r recommend.Rating
			err := row.Scan(&r.UserID, &r.ItemID, &r.Score)
			return r, err
		})
	observe("SELECT", "ratings", start, err)
	if err != nil {
		return nil, db.wrapProviderError("read ratings", err)
	}
	return ratings, nil
}

// wrapProviderError marks connection failures as ErrDataSourceUnavailable
// so the engine and trainer can tell them apart from query bugs.
func (db *DB) wrapProviderError(op string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %w", op, recommend.ErrDataSourceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
