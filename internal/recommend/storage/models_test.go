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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testState() *ModelState {
	return &ModelState{
		FactorCount:    2,
		EpochCount:     20,
		LearningRate:   0.005,
		Regularization: 0.02,
		ScaleMin:       1,
		ScaleMax:       10,
		GlobalMean:     6.123456789012345,
		UserIDs:        []int64{1, 2},
		UserBias:       []float64{0.25, -0.125},
		UserFactors:    [][]float64{{0.1, 0.2}, {-0.3, 0.4}},
		ItemIDs:        []string{"A", "B", "C"},
		ItemBias:       []float64{1.5, -2.25, 0.0000001},
		ItemFactors:    [][]float64{{0.5, 0.5}, {-0.1, 0.9}, {0.33333333333, -0.7}},
	}
}

func TestNewStore(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "models")
		s, err := NewStore(dir, "latent_factor")
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory not created: %v", err)
		}
		if got := s.Versions(); len(got) != 0 {
			t.Errorf("Versions() = %v, want empty", got)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		if _, err := NewStore(t.TempDir(), ""); err == nil {
			t.Error("expected error for empty name")
		}
	})

	t.Run("rejects path separators", func(t *testing.T) {
		if _, err := NewStore(t.TempDir(), "../evil"); err == nil {
			t.Error("expected error for name with separator")
		}
	})

	t.Run("indexes existing artifacts", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"latent_factor_v1.gob.gz", "latent_factor_v3.gob.gz", "other_v9.gob.gz", "notes.txt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
				t.Fatal(err)
			}
		}
		s, err := NewStore(dir, "latent_factor")
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if got, want := s.Versions(), []int{1, 3}; !reflect.DeepEqual(got, want) {
			t.Errorf("Versions() = %v, want %v", got, want)
		}
	})
}

func TestParseModelFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantName    string
		wantVersion int
		wantOK      bool
	}{
		{"latent_factor_v1.gob.gz", "latent_factor", 1, true},
		{"latent_factor_v12.gob.gz", "latent_factor", 12, true},
		{"a_v_v2.gob.gz", "a_v", 2, true},
		{"latent_factor_v0.gob.gz", "", 0, false},
		{"latent_factor_vx.gob.gz", "", 0, false},
		{"latent_factor_v1.gob", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
		{".latent_factor_v1.gob.gz.tmp-123", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			name, version, ok := parseModelFilename(tt.filename)
			if ok != tt.wantOK || name != tt.wantName || version != tt.wantVersion {
				t.Errorf("parseModelFilename(%q) = (%q, %d, %v), want (%q, %d, %v)",
					tt.filename, name, version, ok, tt.wantName, tt.wantVersion, tt.wantOK)
			}
		})
	}
}

func TestIsArtifactFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"/models/latent_factor_v3.gob.gz", true},
		{"latent_factor_v3.gob.gz", true},
		{"/models/other_v3.gob.gz", false},
		{"/models/.latent_factor_v3.gob.gz.tmp-42", false},
		{"/models/notes.txt", false},
	}
	for _, tt := range tests {
		if got := IsArtifactFile("latent_factor", tt.filename); got != tt.want {
			t.Errorf("IsArtifactFile(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob.gz")
	state := testState()

	meta, err := Save(path, state, Metadata{RunID: "run-1", RatingCount: 3})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Checksum == "" {
		t.Error("Save() did not set checksum")
	}
	if meta.FormatVersion != FormatVersion {
		t.Errorf("FormatVersion = %d, want %d", meta.FormatVersion, FormatVersion)
	}
	if meta.UserCount != 2 || meta.ItemCount != 3 {
		t.Errorf("counts = (%d, %d), want (2, 3)", meta.UserCount, meta.ItemCount)
	}

	loaded, loadedMeta, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, state) {
		t.Errorf("Load() state = %+v, want %+v", loaded, state)
	}
	if loadedMeta.RunID != "run-1" || loadedMeta.Checksum != meta.Checksum {
		t.Errorf("Load() metadata = %+v, want run-1 with checksum %s", loadedMeta, meta.Checksum)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Save(filepath.Join(dir, "m_v1.gob.gz"), testState(), Metadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "m_v1.gob.gz" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only m_v1.gob.gz", names)
	}
}

func TestSave_RejectsInvalidState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob.gz")
	state := testState()
	state.ItemBias = state.ItemBias[:1]

	if _, err := Save(path, state, Metadata{}); err == nil {
		t.Fatal("Save() expected error for inconsistent state")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("artifact exists after failed save: %v", err)
	}
}

// writeEnvelope encodes a hand-built artifact for negative tests.
func writeEnvelope(t *testing.T, path string, env envelope) {
	t.Helper()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

func compressState(t *testing.T, state *ModelState) (data []byte, checksum string) {
	t.Helper()
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(state); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(payload.Bytes())

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(payload.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return compressed.Bytes(), hex.EncodeToString(sum[:])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.gob.gz")
	if _, err := Save(valid, testState(), Metadata{}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(valid)
	if err != nil {
		t.Fatal(err)
	}

	truncated := filepath.Join(dir, "truncated.gob.gz")
	if err := os.WriteFile(truncated, raw[:len(raw)/2], 0o600); err != nil {
		t.Fatal(err)
	}

	garbage := filepath.Join(dir, "garbage.gob.gz")
	if err := os.WriteFile(garbage, []byte("definitely not a model"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, checksum := compressState(t, testState())

	wrongMagic := filepath.Join(dir, "magic.gob.gz")
	writeEnvelope(t, wrongMagic, envelope{Magic: "pickle", FormatVersion: FormatVersion, Checksum: checksum, CompressedData: data})

	futureVersion := filepath.Join(dir, "future.gob.gz")
	writeEnvelope(t, futureVersion, envelope{Magic: ArtifactMagic, FormatVersion: FormatVersion + 1, Checksum: checksum, CompressedData: data})

	badChecksum := filepath.Join(dir, "checksum.gob.gz")
	writeEnvelope(t, badChecksum, envelope{Magic: ArtifactMagic, FormatVersion: FormatVersion, Checksum: strings.Repeat("0", 64), CompressedData: data})

	noPayload := filepath.Join(dir, "nopayload.gob.gz")
	writeEnvelope(t, noPayload, envelope{Magic: ArtifactMagic, FormatVersion: FormatVersion, Checksum: checksum})

	incomplete := testState()
	incomplete.FactorCount = 0
	incompleteData, incompleteSum := compressState(t, incomplete)
	missingField := filepath.Join(dir, "missing.gob.gz")
	writeEnvelope(t, missingField, envelope{Magic: ArtifactMagic, FormatVersion: FormatVersion, Checksum: incompleteSum, CompressedData: incompleteData})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "absent.gob.gz"), ErrModelNotFound},
		{"truncated file", truncated, ErrCorruptArtifact},
		{"not a gob stream", garbage, ErrCorruptArtifact},
		{"wrong magic", wrongMagic, ErrCorruptArtifact},
		{"unsupported format version", futureVersion, ErrIncompatibleVersion},
		{"checksum mismatch", badChecksum, ErrCorruptArtifact},
		{"no payload", noPayload, ErrCorruptArtifact},
		{"required field missing", missingField, ErrCorruptArtifact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("corrupt and incompatible are distinct", func(t *testing.T) {
		_, _, err := Load(futureVersion)
		if errors.Is(err, ErrCorruptArtifact) {
			t.Errorf("version mismatch also matched ErrCorruptArtifact: %v", err)
		}
	})
}

func TestStore_PublishLatestPrune(t *testing.T) {
	s, err := NewStore(t.TempDir(), "latent_factor")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Latest(); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Latest() on empty store error = %v, want ErrModelNotFound", err)
	}

	for i := 1; i <= 4; i++ {
		meta, err := s.Publish(testState(), Metadata{RatingCount: i})
		if err != nil {
			t.Fatalf("Publish() #%d error = %v", i, err)
		}
		if meta.Version != i {
			t.Errorf("Publish() #%d version = %d, want %d", i, meta.Version, i)
		}
		if meta.Name != "latent_factor" {
			t.Errorf("Publish() name = %q, want latent_factor", meta.Name)
		}
	}

	version, path, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if version != 4 || path != s.Path(4) {
		t.Errorf("Latest() = (%d, %s), want (4, %s)", version, path, s.Path(4))
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 4 || list[0].Version != 4 || list[3].Version != 1 {
		t.Errorf("List() versions not newest first: %+v", list)
	}

	removed, err := s.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed = %d, want 2", removed)
	}
	if got, want := s.Versions(), []int{3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Versions() after prune = %v, want %v", got, want)
	}
	if _, err := os.Stat(s.Path(1)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("v1 still on disk after prune: %v", err)
	}

	// Versions keep increasing after a prune.
	meta, err := s.Publish(testState(), Metadata{})
	if err != nil {
		t.Fatal(err)
	}
	if meta.Version != 5 {
		t.Errorf("Publish() after prune version = %d, want 5", meta.Version)
	}
}

func TestStore_RefreshSeesExternalPublish(t *testing.T) {
	dir := t.TempDir()
	reader, err := NewStore(dir, "latent_factor")
	if err != nil {
		t.Fatal(err)
	}
	writer, err := NewStore(dir, "latent_factor")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := writer.Publish(testState(), Metadata{}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := reader.Latest(); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("reader saw publish before refresh: %v", err)
	}
	if err := reader.Refresh(); err != nil {
		t.Fatal(err)
	}
	if v, _, err := reader.Latest(); err != nil || v != 1 {
		t.Errorf("Latest() after refresh = (%d, %v), want (1, nil)", v, err)
	}
}
