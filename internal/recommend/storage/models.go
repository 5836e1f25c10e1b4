// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const artifactExt = ".gob.gz"

// Store manages the versioned artifacts of one model name inside a directory.
// It is safe for concurrent use within a process. Publishing from several
// processes at once is not coordinated.
type Store struct {
	baseDir string
	name    string

	mu       sync.RWMutex
	versions []int // ascending
}

// NewStore creates a store rooted at baseDir, creating the directory when
// needed, and indexes the artifacts already present.
func NewStore(baseDir, name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("model name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("model name %q must not contain path separators", name)
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	s := &Store{baseDir: baseDir, name: name}
	if err := s.Refresh(); err != nil {
		return nil, fmt.Errorf("scan models: %w", err)
	}
	return s, nil
}

// Dir returns the directory the store watches.
func (s *Store) Dir() string {
	return s.baseDir
}

// Name returns the model name the store manages.
func (s *Store) Name() string {
	return s.name
}

// Refresh rescans the directory. Artifacts published by other processes
// become visible after a refresh.
func (s *Store) Refresh() error {
	versions, err := s.scanVersions()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.versions = versions
	s.mu.Unlock()
	return nil
}

func (s *Store) scanVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseModelFilename(entry.Name())
		if !ok || name != s.name {
			continue
		}
		versions = append(versions, version)
	}
	sort.Ints(versions)
	return versions, nil
}

// parseModelFilename extracts the model name and version from a filename
// like "latent_factor_v3.gob.gz".
func parseModelFilename(filename string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(filename, artifactExt)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// IsArtifactFile reports whether filename is a published artifact of the
// named model. Temporary files left by an interrupted save do not match.
func IsArtifactFile(modelName, filename string) bool {
	name, _, ok := parseModelFilename(filepath.Base(filename))
	return ok && name == modelName
}

// Path returns the artifact path for a version.
func (s *Store) Path(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", s.name, version, artifactExt))
}

// Publish writes state as the next version and returns its metadata.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Publish(state *ModelState, meta Metadata) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Pick up versions written by other processes before choosing a number.
	versions, err := s.scanVersions()
	if err != nil {
		return Metadata{}, fmt.Errorf("scan models: %w", err)
	}
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}

	meta.Name = s.name
	meta.Version = next
	saved, err := Save(s.Path(next), state, meta)
	if err != nil {
		return Metadata{}, fmt.Errorf("save %s v%d: %w", s.name, next, err)
	}

	s.versions = append(versions, next)
	return saved, nil
}

// Latest returns the highest indexed version and its path.
func (s *Store) Latest() (version int, path string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.versions) == 0 {
		return 0, "", fmt.Errorf("%w: no %s artifacts in %s", ErrModelNotFound, s.name, s.baseDir)
	}
	version = s.versions[len(s.versions)-1]
	return version, s.Path(version), nil
}

// Versions returns the indexed versions in ascending order.
func (s *Store) Versions() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.versions...)
}

// List returns the metadata of every indexed artifact, newest first.
// Artifacts that cannot be inspected are skipped and reported in the
// joined error.
func (s *Store) List() ([]Metadata, error) {
	versions := s.Versions()

	var errs []error
	out := make([]Metadata, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		meta, err := Inspect(s.Path(versions[i]))
		if err != nil {
			errs = append(errs, fmt.Errorf("v%d: %w", versions[i], err))
			continue
		}
		out = append(out, meta)
	}
	return out, errors.Join(errs...)
}

// Prune removes all but the newest keep versions and returns how many
// artifacts were deleted.
func (s *Store) Prune(keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	if len(s.versions) <= keep {
		return 0, nil
	}

	cut := len(s.versions) - keep
	removed := 0
	for _, v := range s.versions[:cut] {
		if err := os.Remove(s.Path(v)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.versions = s.versions[removed:]
			return removed, fmt.Errorf("remove %s v%d: %w", s.name, v, err)
		}
		removed++
	}
	s.versions = append([]int(nil), s.versions[cut:]...)
	return removed, nil
}
