// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the API error envelope so every handler reports
// invalid input the same way.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Field names taken from json tags, so errors name the request keys
//   - The "book_id" tag for catalogue identifiers (ISBN-10/13 and dataset variants)
//   - APIError conversion with the VALIDATION_ERROR code
//
// # Quick Start
//
//	type CreatePreferenceRequest struct {
//	    UserID int64  `json:"user_id" validate:"required,gt=0"`
//	    ISBN   string `json:"isbn" validate:"required,book_id"`
//	    Rating *int   `json:"rating" validate:"required,min=0,max=10"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req CreatePreferenceRequest
//	    // decode body ...
//	    if err := validation.ValidateStruct(&req); err != nil {
//	        apiErr := err.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	        return
//	    }
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
