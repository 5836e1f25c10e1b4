// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// ArtifactMagic identifies a shelfwise model artifact.
	ArtifactMagic = "shelfwise/latent-factor"

	// FormatVersion is the only artifact format this build reads and writes.
	FormatVersion uint32 = 1
)

var (
	// ErrCorruptArtifact indicates an unreadable artifact or one with missing
	// or inconsistent fields.
	ErrCorruptArtifact = errors.New("corrupt model artifact")

	// ErrIncompatibleVersion indicates an artifact written in a format
	// version this build does not support.
	ErrIncompatibleVersion = errors.New("incompatible model artifact version")

	// ErrModelNotFound indicates that no artifact exists at the requested
	// location.
	ErrModelNotFound = errors.New("model artifact not found")
)

// Metadata describes the lineage of a trained model.
type Metadata struct {
	Name               string    `json:"name"`
	Version            int       `json:"version"`
	RunID              string    `json:"run_id"`
	FormatVersion      uint32    `json:"format_version"`
	TrainedAt          time.Time `json:"trained_at"`
	SavedAt            time.Time `json:"saved_at"`
	RatingCount        int       `json:"rating_count"`
	UserCount          int       `json:"user_count"`
	ItemCount          int       `json:"item_count"`
	FactorCount        int       `json:"factor_count"`
	EpochCount         int       `json:"epoch_count"`
	Fingerprint        string    `json:"fingerprint"`
	Checksum           string    `json:"checksum"`
	SizeBytes          int64     `json:"size_bytes"`
	TrainingDurationMS int64     `json:"training_duration_ms"`
}

// envelope is the on-disk layout of an artifact.
type envelope struct {
	Magic          string
	FormatVersion  uint32
	Metadata       Metadata
	Checksum       string
	CompressedData []byte
}

// Save writes state to path atomically and returns the completed metadata.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func Save(path string, state *ModelState, meta Metadata) (Metadata, error) {
	if err := state.Validate(); err != nil {
		return Metadata{}, fmt.Errorf("refusing to save invalid model: %w", err)
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(state); err != nil {
		return Metadata{}, fmt.Errorf("encode model state: %w", err)
	}
	sum := sha256.Sum256(payload.Bytes())
	checksum := hex.EncodeToString(sum[:])

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(payload.Bytes()); err != nil {
		return Metadata{}, fmt.Errorf("compress model state: %w", err)
	}
	if err := gz.Close(); err != nil {
		return Metadata{}, fmt.Errorf("close gzip writer: %w", err)
	}

	meta.FormatVersion = FormatVersion
	meta.Checksum = checksum
	meta.SavedAt = time.Now().UTC()
	meta.FactorCount = state.FactorCount
	meta.EpochCount = state.EpochCount
	meta.UserCount = len(state.UserIDs)
	meta.ItemCount = len(state.ItemIDs)

	var file bytes.Buffer
	if err := gob.NewEncoder(&file).Encode(envelope{
		Magic:          ArtifactMagic,
		FormatVersion:  FormatVersion,
		Metadata:       meta,
		Checksum:       checksum,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return Metadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	meta.SizeBytes = int64(file.Len())

	if err := writeFileAtomic(path, file.Bytes(), 0o640); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Load reads and verifies the artifact at path.
func Load(path string) (*ModelState, Metadata, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, Metadata{}, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(env.CompressedData))
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: open gzip stream: %w", ErrCorruptArtifact, err)
	}
	payload, err := io.ReadAll(gz)
	if closeErr := gz.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: decompress payload: %w", ErrCorruptArtifact, err)
	}

	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, Metadata{}, fmt.Errorf("%w: checksum mismatch", ErrCorruptArtifact)
	}

	var state ModelState
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&state); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: decode model state: %w", ErrCorruptArtifact, err)
	}
	if err := state.Validate(); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}

	return &state, env.Metadata, nil
}

// Inspect returns the metadata of the artifact at path without decoding the
// model payload.
func Inspect(path string) (Metadata, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return Metadata{}, err
	}
	return env.Metadata, nil
}

func readEnvelope(path string) (*envelope, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("%w: open %s: %w", ErrCorruptArtifact, path, err)
	}
	defer f.Close()

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrCorruptArtifact, err)
	}
	if env.Magic != ArtifactMagic {
		return nil, fmt.Errorf("%w: unexpected magic %q", ErrCorruptArtifact, env.Magic)
	}
	if env.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: artifact format %d, supported %d",
			ErrIncompatibleVersion, env.FormatVersion, FormatVersion)
	}
	if env.Checksum == "" || len(env.CompressedData) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrCorruptArtifact)
	}
	return &env, nil
}

// writeFileAtomic writes data to a temporary file in the destination
// directory and renames it over path once it is durable.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename artifact into place: %w", err)
	}

	// Persist the rename itself. Not every platform supports syncing a
	// directory handle, so failures here are ignored.
	if d, dirErr := os.Open(dir); dirErr == nil { //nolint:gosec // dir derived from path
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
