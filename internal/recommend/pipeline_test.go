// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// memoryStore serves both sides of the pipeline from fixed slices.
type memoryStore struct {
	ratings []recommend.Rating
	items   []recommend.Item
}

func (s *memoryStore) GetRatingsAboveThreshold(_ context.Context, threshold int) ([]recommend.Rating, error) {
	var out []recommend.Rating
	for _, r := range s.ratings {
		if r.Score > threshold {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) GetAllItems(context.Context) ([]recommend.Item, error) {
	return s.items, nil
}

func (s *memoryStore) GetRatedItemIDs(_ context.Context, userID int64) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, r := range s.ratings {
		if r.UserID == userID {
			out[r.ItemID] = struct{}{}
		}
	}
	return out, nil
}

// trainAndServe runs a full training pass into a temporary store and returns
// an engine serving the published artifact.
func trainAndServe(t *testing.T, db *memoryStore) *recommend.Engine {
	t.Helper()

	store, err := storage.NewStore(t.TempDir(), "latent_factor")
	if err != nil {
		t.Fatal(err)
	}
	fitter := algorithms.NewMatrixFactorization(algorithms.MatrixFactorizationConfig{NumFactors: 4, NumEpochs: 20})
	trainer, err := recommend.NewTrainer(nil, db, fitter, store, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	result, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Metadata.Version != 1 {
		t.Fatalf("first published version = %d, want 1", result.Metadata.Version)
	}

	engine, err := recommend.NewEngine(nil, db, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, path, err := store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.LoadModel(path); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	return engine
}

func threeRatings() []recommend.Rating {
	return []recommend.Rating{
		{UserID: 1, ItemID: "A", Score: 10},
		{UserID: 1, ItemID: "B", Score: 1},
		{UserID: 2, ItemID: "A", Score: 2},
	}
}

func TestPipeline_UserWhoRatedEverything(t *testing.T) {
	db := &memoryStore{
		ratings: threeRatings(),
		items:   []recommend.Item{{ItemID: "A", Title: "A"}, {ItemID: "B", Title: "B"}},
	}
	engine := trainAndServe(t, db)

	got, err := engine.Recommend(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend(1, 1) = %v, want empty slice", got)
	}
}

func TestPipeline_RecommendsUnratedItem(t *testing.T) {
	db := &memoryStore{
		ratings: threeRatings(),
		items: []recommend.Item{
			{ItemID: "A", Title: "A"},
			{ItemID: "B", Title: "B"},
			{ItemID: "C", Title: "C"},
		},
	}
	engine := trainAndServe(t, db)

	got, err := engine.Recommend(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "C" {
		t.Fatalf("Recommend(1, 1) = %v, want [C]", got)
	}
	if s := got[0].PredictedScore; s < 1 || s > 10 {
		t.Errorf("predicted score %v outside [1, 10]", s)
	}

	// User 2 has not rated B or C; both are returned with bounded scores.
	got, err = engine.Recommend(context.Background(), 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Recommend(2, 10) returned %d items, want 2", len(got))
	}
	for k := 1; k < len(got); k++ {
		if got[k].PredictedScore > got[k-1].PredictedScore {
			t.Errorf("results not sorted descending: %v", got)
		}
	}
}

func TestPipeline_ColdStartUser(t *testing.T) {
	db := &memoryStore{
		ratings: threeRatings(),
		items:   []recommend.Item{{ItemID: "A", Title: "A"}, {ItemID: "B", Title: "B"}},
	}
	engine := trainAndServe(t, db)

	got, err := engine.Recommend(context.Background(), 12345, 5)
	if err != nil {
		t.Fatalf("Recommend() for unknown user error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recommend() for unknown user returned %d items, want 2", len(got))
	}
	m := engine.Model()
	for _, p := range got {
		if p.PredictedScore != m.Predict(12345, p.ItemID) {
			t.Errorf("score for %s = %v, want model fallback %v", p.ItemID, p.PredictedScore, m.Predict(12345, p.ItemID))
		}
	}
}
