// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package algorithms provides the model fitters used by the recommend
// trainer.
//
// MatrixFactorization fits explicit 1-10 ratings with a bias-augmented
// latent factor model using seeded SGD. Its output is a storage.ModelState
// that the recommend package wraps into an immutable Model.
//
// Fitters hold no state between calls, so a single instance may be shared by
// concurrent training runs.
package algorithms
