// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"errors"

	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// Error taxonomy. Every error returned by this package wraps exactly one of
// these sentinels so callers can decide between retry and fail-fast with
// errors.Is.
var (
	// ErrEmptyTrainingSet is returned when no qualifying ratings exist.
	ErrEmptyTrainingSet = errors.New("no qualifying ratings to train on")

	// ErrDataSourceUnavailable is returned when the rating store cannot be
	// reached or does not answer within the lookup timeout. Retrying later
	// may succeed.
	ErrDataSourceUnavailable = errors.New("rating store unavailable")

	// ErrModelNotLoaded is returned by Recommend before any model has been
	// published to the engine.
	ErrModelNotLoaded = errors.New("recommendation model not loaded")

	// ErrTrainingInProgress is returned when a second training run is
	// started while one is already executing in the same process.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrCorruptArtifact and ErrIncompatibleVersion are produced by the
	// artifact loader.
	ErrCorruptArtifact     = storage.ErrCorruptArtifact
	ErrIncompatibleVersion = storage.ErrIncompatibleVersion
)

// IsRetryable reports whether err describes a transient condition.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataSourceUnavailable) || errors.Is(err, ErrTrainingInProgress)
}
