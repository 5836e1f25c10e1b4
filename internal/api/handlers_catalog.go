// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	user := req.User()
	if err := h.db.CreateUser(r.Context(), &user); err != nil {
		h.respondWriteError(w, err, "user")
		return
	}

	respondSuccess(w, http.StatusCreated, models.CreatedResponse{
		Message: "User created",
		Data:    user,
	}, start)
}

// CreateItem handles POST /api/v1/items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateBookRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	book := req.Book()
	if err := h.db.CreateBook(r.Context(), &book); err != nil {
		h.respondWriteError(w, err, "book")
		return
	}

	respondSuccess(w, http.StatusCreated, models.CreatedResponse{
		Message: "Book created",
		Data:    book,
	}, start)
}

// CreatePreference handles POST /api/v1/preferences. Posting the same
// (user_id, isbn) again replaces the stored rating.
func (h *Handler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreatePreferenceRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	pref := req.Preference()
	if err := h.db.UpsertRating(r.Context(), &pref); err != nil {
		h.respondWriteError(w, err, "preference")
		return
	}

	respondSuccess(w, http.StatusCreated, models.CreatedResponse{
		Message: "Preference recorded",
		Data:    pref,
	}, start)
}

// respondWriteError maps a catalogue write failure to its HTTP status.
func (h *Handler) respondWriteError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, database.ErrAlreadyExists):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "The "+what+" already exists", nil)
	case errors.Is(err, database.ErrNotFound):
		respondAPIError(w, http.StatusNotFound, &models.APIError{
			Code:    models.ErrCodeNotFound,
			Message: "Referenced user or book does not exist",
			Details: map[string]interface{}{"error": sanitizeLogValue(err.Error())},
		}, nil)
	case database.IsUnavailable(err):
		respondUnavailable(w, err)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to store the "+what, err)
	}
}
