// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"

	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// SaveModel writes m to path atomically.
func SaveModel(m *Model, path string) (storage.Metadata, error) {
	if m == nil {
		return storage.Metadata{}, ErrModelNotLoaded
	}
	meta, err := storage.Save(path, m.state, m.meta)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("save model: %w", err)
	}
	return meta, nil
}

// LoadModelFile reads the artifact at path into a new Model. Failures wrap
// ErrCorruptArtifact, ErrIncompatibleVersion or storage.ErrModelNotFound.
func LoadModelFile(path string) (*Model, error) {
	state, meta, err := storage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return NewModel(state, meta)
}
