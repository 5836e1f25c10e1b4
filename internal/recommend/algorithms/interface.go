// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Compile-time check that the fitters satisfy the trainer contract.
var _ recommend.Fitter = (*MatrixFactorization)(nil)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
