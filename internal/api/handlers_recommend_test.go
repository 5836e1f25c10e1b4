// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func itemIDs(recs []models.RecommendedBook) []string {
	ids := make([]string, len(recs))
	for k, r := range recs {
		ids[k] = r.ItemID
	}
	return ids
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantIDs   []string
		wantCold  bool
		wantFirst float64
	}{
		{
			name:      "excludes rated and ranks by score",
			path:      "/api/v1/recommendations/1",
			wantIDs:   []string{"B", "C", "D"},
			wantFirst: 6,
		},
		{
			name:      "top_n limits the list",
			path:      "/api/v1/recommendations/1?top_n=1",
			wantIDs:   []string{"B"},
			wantFirst: 6,
		},
		{
			name:    "top_n zero is an empty list",
			path:    "/api/v1/recommendations/1?top_n=0",
			wantIDs: []string{},
		},
		{
			name:    "top_n above the cap is capped",
			path:    "/api/v1/recommendations/2?top_n=500",
			wantIDs: []string{"A", "B", "C"},
		},
		{
			name:      "cold start user",
			path:      "/api/v1/recommendations/77?top_n=2",
			wantIDs:   []string{"A", "B"},
			wantCold:  true,
			wantFirst: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestHandler(t, seededStore(), testModel(t))
			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}

			var got models.RecommendationsResponse
			decodeResponse(t, rec, &got)
			if got.Recommendations == nil {
				t.Fatal("recommendations is null, want an array")
			}
			if ids := itemIDs(got.Recommendations); !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("items = %v, want %v", ids, tt.wantIDs)
			}
			if got.ColdStart != tt.wantCold {
				t.Errorf("cold_start = %v, want %v", got.ColdStart, tt.wantCold)
			}
			if got.ModelVersion != 3 {
				t.Errorf("model_version = %d, want 3", got.ModelVersion)
			}
			if tt.wantFirst != 0 && got.Recommendations[0].PredictedScore != tt.wantFirst {
				t.Errorf("first score = %v, want %v", got.Recommendations[0].PredictedScore, tt.wantFirst)
			}
		})
	}
}

func TestRecommendations_UncappedTopNReturnsAllCandidates(t *testing.T) {
	h := setupTestHandler(t, seededStore(), testModel(t))
	h.config.API.MaxTopN = 0

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/2?top_n=500", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got models.RecommendationsResponse
	decodeResponse(t, rec, &got)
	if len(got.Recommendations) != 4 {
		t.Errorf("got %d recommendations, want all 4 unrated books", len(got.Recommendations))
	}
}

func TestRecommendations_FullyRatedUser(t *testing.T) {
	store := seededStore()
	store.ratings[2] = map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}
	h := setupTestHandler(t, store, testModel(t))

	before := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.OutcomeEmpty))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.RecommendationsResponse
	decodeResponse(t, rec, &got)
	if got.Recommendations == nil || len(got.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want []", got.Recommendations)
	}
	if after := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.OutcomeEmpty)); after-before != 1 {
		t.Errorf("empty outcomes increased by %v, want 1", after-before)
	}
}

func TestRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		withModel  bool
		readErr    error
		wantStatus int
		wantCode   string
		retryAfter bool
	}{
		{
			name:       "non-numeric user",
			path:       "/api/v1/recommendations/abc",
			withModel:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "negative user",
			path:       "/api/v1/recommendations/-4",
			withModel:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "negative top_n",
			path:       "/api/v1/recommendations/1?top_n=-1",
			withModel:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "non-numeric top_n",
			path:       "/api/v1/recommendations/1?top_n=ten",
			withModel:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "model not loaded",
			path:       "/api/v1/recommendations/1",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   models.ErrCodeModelNotLoaded,
		},
		{
			name:       "model not loaded with top_n zero",
			path:       "/api/v1/recommendations/1?top_n=0",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   models.ErrCodeModelNotLoaded,
		},
		{
			name:       "store unavailable",
			path:       "/api/v1/recommendations/1",
			withModel:  true,
			readErr:    errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   models.ErrCodeDataSource,
			retryAfter: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			store.readErr = tt.readErr
			var model *recommend.Model
			if tt.withModel {
				model = testModel(t)
			}
			h := setupTestHandler(t, store, model)

			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decodeResponse(t, rec, nil)
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("response = %+v, want error %s", resp, tt.wantCode)
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}
		})
	}
}

func TestRecommendations_Idempotent(t *testing.T) {
	h := setupTestHandler(t, seededStore(), testModel(t))

	first := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/2", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/2", nil))

	var a, b models.RecommendationsResponse
	decodeResponse(t, first, &a)
	decodeResponse(t, second, &b)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated request differs:\n%+v\n%+v", a, b)
	}
}

func TestModelInfo(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		h := setupTestHandler(t, seededStore(), testModel(t))
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/model", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got struct {
			Model recommend.ModelInfo   `json:"model"`
			Stats recommend.EngineStats `json:"stats"`
		}
		decodeResponse(t, rec, &got)
		if got.Model.Version != 3 || got.Model.UserCount != 2 || got.Model.ItemCount != 4 {
			t.Errorf("model = %+v", got.Model)
		}
		if !got.Stats.ModelLoaded {
			t.Error("stats.model_loaded = false, want true")
		}
	})

	t.Run("not loaded", func(t *testing.T) {
		h := setupTestHandler(t, seededStore(), nil)
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/model", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})
}
