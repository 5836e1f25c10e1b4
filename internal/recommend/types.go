// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"time"
)

// Rating is one explicit user judgement of a book.
type Rating struct {
	// UserID identifies the rating user.
	UserID int64 `json:"user_id"`

	// ItemID is the ISBN of the rated book.
	ItemID string `json:"item_id"`

	// Score is the rating on the configured scale. Zero marks implicit
	// feedback and never reaches the trainer.
	Score int `json:"score"`
}

// Item is a book that can be recommended.
type Item struct {
	// ItemID is the ISBN, unique across the catalogue.
	ItemID string `json:"item_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Author is nil when the catalogue has no author on record.
	Author *string `json:"author"`

	// PublicationYear is nil when unknown.
	PublicationYear *int `json:"publication_year,omitempty"`

	// Publisher is nil when unknown.
	Publisher *string `json:"publisher,omitempty"`
}

// Prediction is one ranked entry of a recommendation list.
type Prediction struct {
	ItemID         string  `json:"item_id"`
	Title          string  `json:"title"`
	Author         *string `json:"author"`
	PredictedScore float64 `json:"predicted_score"`
}

// Scale is the closed rating interval a model predicts into.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether score lies inside the scale.
func (s Scale) Contains(score float64) bool {
	return score >= s.Min && score <= s.Max
}

// Clamp bounds v to the scale.
func (s Scale) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// ModelInfo summarizes the model currently served.
type ModelInfo struct {
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	RunID       string    `json:"run_id,omitempty"`
	TrainedAt   time.Time `json:"trained_at"`
	LoadedAt    time.Time `json:"loaded_at"`
	FactorCount int       `json:"factor_count"`
	EpochCount  int       `json:"epoch_count"`
	UserCount   int       `json:"user_count"`
	ItemCount   int       `json:"item_count"`
	RatingCount int       `json:"rating_count"`
	GlobalMean  float64   `json:"global_mean"`
	Scale       Scale     `json:"scale"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// EngineStats holds counters accumulated since the engine was created.
type EngineStats struct {
	Requests        int64 `json:"requests"`
	Errors          int64 `json:"errors"`
	ColdStartUsers  int64 `json:"cold_start_users"`
	ModelSwaps      int64 `json:"model_swaps"`
	LastLatencyMS   int64 `json:"last_latency_ms"`
	ModelLoaded     bool  `json:"model_loaded"`
	ModelVersion    int   `json:"model_version"`
	CandidatesTotal int64 `json:"candidates_total"`
}
