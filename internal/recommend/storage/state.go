// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package storage

import (
	"fmt"
	"math"
)

// ModelState is the serializable parameter set of a bias-augmented matrix
// factorization model. Index k of the user slices describes UserIDs[k], and
// index k of the item slices describes ItemIDs[k].
type ModelState struct {
	// Hyperparameters used at fit time.
	FactorCount    int
	EpochCount     int
	LearningRate   float64
	Regularization float64

	// Rating scale bounds used to clamp predictions.
	ScaleMin float64
	ScaleMax float64

	GlobalMean float64

	UserIDs     []int64
	UserBias    []float64
	UserFactors [][]float64

	ItemIDs     []string
	ItemBias    []float64
	ItemFactors [][]float64
}

// Validate reports whether every required field is present and the tables
// are mutually consistent.
func (s *ModelState) Validate() error {
	if s == nil {
		return fmt.Errorf("model state is nil")
	}
	if s.FactorCount < 1 {
		return fmt.Errorf("factor count must be positive, got %d", s.FactorCount)
	}
	if !(s.ScaleMin < s.ScaleMax) {
		return fmt.Errorf("invalid rating scale [%v, %v]", s.ScaleMin, s.ScaleMax)
	}
	if math.IsNaN(s.GlobalMean) || math.IsInf(s.GlobalMean, 0) {
		return fmt.Errorf("global mean is not finite")
	}

	if len(s.UserIDs) == 0 {
		return fmt.Errorf("user table is empty")
	}
	if len(s.UserBias) != len(s.UserIDs) || len(s.UserFactors) != len(s.UserIDs) {
		return fmt.Errorf("user table length mismatch: ids=%d bias=%d factors=%d",
			len(s.UserIDs), len(s.UserBias), len(s.UserFactors))
	}
	seenUsers := make(map[int64]struct{}, len(s.UserIDs))
	for k, id := range s.UserIDs {
		if _, dup := seenUsers[id]; dup {
			return fmt.Errorf("duplicate user id %d", id)
		}
		seenUsers[id] = struct{}{}
		if len(s.UserFactors[k]) != s.FactorCount {
			return fmt.Errorf("user %d has %d factors, want %d", id, len(s.UserFactors[k]), s.FactorCount)
		}
	}

	if len(s.ItemIDs) == 0 {
		return fmt.Errorf("item table is empty")
	}
	if len(s.ItemBias) != len(s.ItemIDs) || len(s.ItemFactors) != len(s.ItemIDs) {
		return fmt.Errorf("item table length mismatch: ids=%d bias=%d factors=%d",
			len(s.ItemIDs), len(s.ItemBias), len(s.ItemFactors))
	}
	seenItems := make(map[string]struct{}, len(s.ItemIDs))
	for k, id := range s.ItemIDs {
		if _, dup := seenItems[id]; dup {
			return fmt.Errorf("duplicate item id %q", id)
		}
		seenItems[id] = struct{}{}
		if len(s.ItemFactors[k]) != s.FactorCount {
			return fmt.Errorf("item %q has %d factors, want %d", id, len(s.ItemFactors[k]), s.FactorCount)
		}
	}

	return nil
}
