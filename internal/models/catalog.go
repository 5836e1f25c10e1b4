// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// User is a reader known to the rating store.
type User struct {
	UserID   int64   `json:"user_id"`
	Location *string `json:"location,omitempty"`
	Age      *int    `json:"age,omitempty"`
}

// Book is a catalogue entry keyed by ISBN.
type Book struct {
	ISBN              string  `json:"isbn"`
	Title             string  `json:"book_title"`
	Author            *string `json:"book_author,omitempty"`
	YearOfPublication *int    `json:"year_of_publication,omitempty"`
	Publisher         *string `json:"publisher,omitempty"`
}

// Preference is one explicit rating. Rating 0 records an implicit
// interaction and is kept out of training.
type Preference struct {
	UserID int64  `json:"user_id"`
	ISBN   string `json:"isbn"`
	Rating int    `json:"rating"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	UserID   int64   `json:"user_id" validate:"required,gt=0"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=250"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
}

// User converts the request into a store record.
func (r CreateUserRequest) User() User {
	return User{UserID: r.UserID, Location: r.Location, Age: r.Age}
}

// CreateBookRequest is the body of POST /api/v1/items.
type CreateBookRequest struct {
	ISBN              string  `json:"isbn" validate:"required,book_id"`
	Title             string  `json:"book_title" validate:"required,max=500"`
	Author            *string `json:"book_author,omitempty" validate:"omitempty,max=250"`
	YearOfPublication *int    `json:"year_of_publication,omitempty" validate:"omitempty,min=0,max=2100"`
	Publisher         *string `json:"publisher,omitempty" validate:"omitempty,max=250"`
}

// Book converts the request into a store record.
func (r CreateBookRequest) Book() Book {
	return Book{
		ISBN:              r.ISBN,
		Title:             r.Title,
		Author:            r.Author,
		YearOfPublication: r.YearOfPublication,
		Publisher:         r.Publisher,
	}
}

// CreatePreferenceRequest is the body of POST /api/v1/preferences.
// Rating is a pointer so an explicit 0 is distinguishable from a missing field.
type CreatePreferenceRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	ISBN   string `json:"isbn" validate:"required,book_id"`
	Rating *int   `json:"rating" validate:"required,min=0,max=10"`
}

// Preference converts the request into a store record. It must only be
// called after validation.
func (r CreatePreferenceRequest) Preference() Preference {
	return Preference{UserID: r.UserID, ISBN: r.ISBN, Rating: *r.Rating}
}

// CreatedResponse acknowledges a successful write.
type CreatedResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
