// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
)

// upsertRatingSQL writes a rating only when both the user and the book
// exist. A repeated (user, book) pair replaces the previous score.
const upsertRatingSQL = `
INSERT INTO ratings (user_id, isbn, rating)
SELECT $1::BIGINT, $2::TEXT, $3::INTEGER
WHERE EXISTS (SELECT 1 FROM users WHERE user_id = $1::BIGINT)
  AND EXISTS (SELECT 1 FROM books WHERE isbn = $2::TEXT)
ON CONFLICT (user_id, isbn) DO UPDATE SET rating = EXCLUDED.rating`

// maxConflictRetries bounds retries of an upsert that lost a write race.
const maxConflictRetries = 3

// UpsertRating records a user's score for a book. It returns ErrNotFound
// naming the missing side when the user or the book does not exist.
func (db *DB) UpsertRating(ctx context.Context, pref *models.Preference) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		affected int64
		err      error
	)
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		affected, err = db.upsertRatingOnce(ctx, pref)
		if err == nil || !isTransactionConflict(err) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	if affected > 0 {
		return nil
	}
	return db.missingReference(ctx, pref.UserID, pref.ISBN)
}

func (db *DB) upsertRatingOnce(ctx context.Context, pref *models.Preference) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, upsertRatingSQL, pref.UserID, pref.ISBN, pref.Rating)
	observe("UPSERT", "ratings", start, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// missingReference explains why an upsert touched no rows.
func (db *DB) missingReference(ctx context.Context, userID int64, isbn string) error {
	userOK, err := db.userExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !userOK {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	bookOK, err := db.bookExists(ctx, isbn)
	if err != nil {
		return fmt.Errorf("failed to check book: %w", err)
	}
	if !bookOK {
		return fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	// Both rows exist now; they were created after the upsert ran.
	return fmt.Errorf("rating for user %d and book %s was not written", userID, isbn)
}

// GetUserRatings returns every rating by one user ordered by ISBN.
func (db *DB) GetUserRatings(ctx context.Context, userID int64) ([]models.Preference, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	prefs, err := queryAndScan(ctx, db.conn,
		`SELECT user_id, isbn, rating FROM ratings WHERE user_id = $1 ORDER BY isbn`,
		[]any{userID},
		func(row rowScanner) (models.Preference, error) {
			var p models.Preference
			err := row.Scan(&p.UserID, &p.ISBN, &p.Rating)
			return p, err
		})
	observe("SELECT", "ratings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings for user %d: %w", userID, err)
	}
	return prefs, nil
}
