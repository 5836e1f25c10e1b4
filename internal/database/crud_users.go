// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
)

// CreateUser inserts a new user. It returns ErrAlreadyExists if the ID is taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (user_id, location, age) VALUES ($1, $2, $3)`,
		user.UserID, user.Location, user.Age)
	observe("INSERT", "users", start, err)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d: %w", user.UserID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given ID, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var (
		user     models.User
		location sql.NullString
		age      sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, location, age FROM users WHERE user_id = $1`, userID).
		Scan(&user.UserID, &location, &age)
	if errors.Is(err, sql.ErrNoRows) {
		observe("SELECT", "users", start, nil)
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	observe("SELECT", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Location = nullableString(location)
	user.Age = nullableInt(age)
	return &user, nil
}

// userExists reports whether a user row exists.
func (db *DB) userExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}
