// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package recommend ranks unread books for a user by predicted rating.
//
// # Overview
//
// The package has three parts:
//
//   - Trainer: reads every rating above a threshold from a RatingSource,
//     fits a bias-augmented matrix factorization through a Fitter, and
//     publishes exactly one artifact.
//   - Model: the immutable fitted parameters, with cold-start fallbacks for
//     users and items that were absent from training.
//   - Engine: serves Recommend calls against a single shared Model held in
//     an atomic pointer.
//
// # Prediction
//
//	predicted(u, i) = global_mean + bu[u] + bi[i] + dot(pu[u], qi[i])
//
// Unknown user:           global_mean + bi[i]
// Unknown item:           global_mean + bu[u]
// Unknown user and item:  global_mean
//
// Every prediction is clamped to the model's rating scale.
//
// # Ranking
//
// Recommend excludes every item the user has rated, sorts the remaining
// items by predicted score descending with a stable sort, and truncates to
// top_n. Equal scores keep the order in which the ItemProvider enumerated the
// items (the database layer orders by ISBN), so repeated calls return
// identical lists.
//
// # Thread Safety
//
// Readers never lock. Replacing the model is a single atomic swap; requests
// that started before the swap finish with the model they captured.
//
// # Errors
//
//   - ErrModelNotLoaded: Recommend before any model was published
//   - ErrDataSourceUnavailable: store lookups failed or timed out (retryable)
//   - ErrEmptyTrainingSet: no qualifying ratings, no artifact written
//   - ErrCorruptArtifact, ErrIncompatibleVersion: artifact load failures
//
// An empty slice with a nil error means the user has rated every item.
package recommend
