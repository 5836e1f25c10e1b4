// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Recommendations handles GET /api/v1/recommendations/{userID}.
//
// Query parameters:
//   - top_n: list length, default from config. Larger than the number of
//     candidates returns them all. When api.max_top_n is set, values above it
//     are capped.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, apiErr := parseUserID(chi.URLParam(r, "userID"))
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}
	topN, apiErr := parseTopN(r, h.engine.DefaultTopN(), h.maxTopN())
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	// The list, version and cold-start flag all come from this one model.
	model := h.engine.Model()

	predictions, err := h.engine.RecommendWith(r.Context(), model, userID, topN)
	if err != nil {
		h.respondRecommendError(w, r, err, start)
		return
	}

	resp := models.RecommendationsResponse{
		UserID:          userID,
		Recommendations: make([]models.RecommendedBook, 0, len(predictions)),
	}
	coldStart := !model.KnowsUser(userID)
	resp.ColdStart = coldStart
	resp.ModelVersion = model.Metadata().Version
	for _, p := range predictions {
		resp.Recommendations = append(resp.Recommendations, models.RecommendedBook{
			ItemID:         p.ItemID,
			Title:          p.Title,
			Author:         p.Author,
			PredictedScore: p.PredictedScore,
		})
	}

	outcome := metrics.OutcomeOK
	if len(predictions) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordRecommendation(outcome, len(predictions), coldStart, time.Since(start))

	respondSuccess(w, http.StatusOK, resp, start)
}

func (h *Handler) respondRecommendError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	switch {
	case errors.Is(err, recommend.ErrModelNotLoaded):
		metrics.RecordRecommendation(metrics.OutcomeNotLoaded, 0, false, time.Since(start))
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeModelNotLoaded,
			"No recommendation model is loaded", nil)
	case errors.Is(err, recommend.ErrDataSourceUnavailable):
		metrics.RecordRecommendation(metrics.OutcomeUnavailable, 0, false, time.Since(start))
		respondUnavailable(w, err)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nobody reads the response.
		metrics.RecordRecommendation(metrics.OutcomeError, 0, false, time.Since(start))
	default:
		metrics.RecordRecommendation(metrics.OutcomeError, 0, false, time.Since(start))
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal,
			"Failed to generate recommendations", err)
	}
}

// ModelInfo handles GET /api/v1/model.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	model := h.engine.Model()
	if model == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeModelNotLoaded,
			"No recommendation model is loaded", nil)
		return
	}

	respondSuccess(w, http.StatusOK, struct {
		Model recommend.ModelInfo   `json:"model"`
		Stats recommend.EngineStats `json:"stats"`
	}{
		Model: model.Info(),
		Stats: h.engine.Stats(),
	}, start)
}
