// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package models defines data structures shared by the HTTP API and the rating
store.

Model Categories:

1. Store Records:
  - User: reader with optional location and age
  - Book: catalogue entry keyed by ISBN
  - Preference: explicit rating on the 0-10 scale (0 = implicit interaction)

2. API Request Models:
  - CreateUserRequest, CreateBookRequest, CreatePreferenceRequest
  - Carry validate tags consumed by internal/validation

3. API Response Models:
  - APIResponse: Standard response wrapper ({status, data, metadata, error})
  - APIError: Error details with machine-readable code
  - RecommendationsResponse, RecommendedBook
  - HealthStatus, DatabaseHealth, WelcomeResponse

JSON Serialization:

All models use snake_case JSON field names. Optional catalogue fields are
pointers so that an absent value is distinguishable from a zero value.
Responses are encoded with github.com/goccy/go-json.
*/
package models
