// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Command shelfwise-train is the offline side of Shelfwise. It fits the
// latent factor model from the rating store, publishes versioned artifacts
// into the model directory watched by the server, and inspects or prunes
// what is already there.
//
//	shelfwise-train train --epochs 30 --factors 64
//	shelfwise-train inspect /data/models/latent_factor_v7.gob.gz
//	shelfwise-train list
//	shelfwise-train prune --keep 3
//
// Settings come from the same configuration as the server; flags override
// them for one invocation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
