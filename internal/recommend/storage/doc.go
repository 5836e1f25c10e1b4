// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package storage persists trained latent factor models as artifacts.
//
// An artifact is the contract between the offline trainer and the serving
// process. It carries every parameter needed to reproduce predictions without
// any external state: factor count, rating scale bounds, global mean, and the
// per-user and per-item bias and factor tables.
//
// # Storage Format
//
//	filename: {name}_v{version}.gob.gz
//
//	envelope (gob):
//	  - Magic          "shelfwise/latent-factor"
//	  - FormatVersion  uint32, must equal FormatVersion
//	  - Metadata       training lineage (run ID, counts, fingerprint)
//	  - Checksum       SHA-256 of the uncompressed model payload
//	  - CompressedData gzip(gob(ModelState))
//
// Every write goes to a temporary file in the destination directory, is
// fsynced, and is then renamed over the final path. A crash mid-write leaves
// at most a stray temporary file; readers never observe a partial artifact.
//
// # Errors
//
// Load distinguishes ErrCorruptArtifact (unreadable, checksum mismatch,
// missing or inconsistent fields) from ErrIncompatibleVersion (readable
// envelope with an unsupported format version). Both are matched with
// errors.Is.
//
// # Usage
//
//	store, err := storage.NewStore("/var/lib/shelfwise/models", "latent_factor")
//	meta, err := store.Publish(state, storage.Metadata{RatingCount: n})
//	version, path, err := store.Latest()
//	state, meta, err := storage.Load(path)
package storage
