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

const selectBookColumns = `SELECT isbn, book_title, book_author, year_of_publication, publisher FROM books`

// CreateBook inserts a new book. It returns ErrAlreadyExists if the ISBN is taken.
func (db *DB) CreateBook(ctx context.Context, book *models.Book) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO books (isbn, book_title, book_author, year_of_publication, publisher)
		 VALUES ($1, $2, $3, $4, $5)`,
		book.ISBN, book.Title, book.Author, book.YearOfPublication, book.Publisher)
	observe("INSERT", "books", start, err)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("book %s: %w", book.ISBN, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook returns the book with the given ISBN, or ErrNotFound.
func (db *DB) GetBook(ctx context.Context, isbn string) (*models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	book, err := scanBook(db.conn.QueryRowContext(ctx, selectBookColumns+` WHERE isbn = $1`, isbn))
	if errors.Is(err, sql.ErrNoRows) {
		observe("SELECT", "books", start, nil)
		return nil, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	observe("SELECT", "books", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// ListBooks returns the whole catalogue ordered by ISBN.
func (db *DB) ListBooks(ctx context.Context) ([]models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	books, err := queryAndScan(ctx, db.conn, selectBookColumns+` ORDER BY isbn`, nil, scanBook)
	observe("SELECT", "books", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func scanBook(row rowScanner) (models.Book, error) {
	var (
		book      models.Book
		author    sql.NullString
		year      sql.NullInt64
		publisher sql.NullString
	)
	if err := row.Scan(&book.ISBN, &book.Title, &author, &year, &publisher); err != nil {
		return models.Book{}, err
	}
	book.Author = nullableString(author)
	book.YearOfPublication = nullableInt(year)
	book.Publisher = nullableString(publisher)
	return book, nil
}

// bookExists reports whether a book row exists.
func (db *DB) bookExists(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists)
	return exists, err
}
