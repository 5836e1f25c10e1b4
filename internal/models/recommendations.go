// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// RecommendedBook is one entry of a recommendation list.
type RecommendedBook struct {
	ItemID         string  `json:"item_id"`
	Title          string  `json:"title"`
	Author         *string `json:"author"`
	PredictedScore float64 `json:"predicted_score"`
}

// RecommendationsResponse is returned by GET /api/v1/recommendations/{userID}.
// Recommendations is never null; a user who has rated the whole catalogue
// receives an empty array.
type RecommendationsResponse struct {
	UserID          int64             `json:"user_id"`
	ColdStart       bool              `json:"cold_start"`
	ModelVersion    int               `json:"model_version"`
	Recommendations []RecommendedBook `json:"recommendations"`
}
