package service

import (
	"context"
	"math/rand"
	"testing"

	"omezka-shop-api/internal/model"
)

func seededEngine(store *fakeStore, seed int64) *RotationEngine {
	return &RotationEngine{
		store: store,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func catalogProducts(rarity model.Rarity, count int, startID int64) []model.Product {
	out := make([]model.Product, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, model.Product{
			ID:          startID + int64(i),
			Name:        "item",
			Price:       10,
			Rarity:      rarity,
			ProductType: model.TypeFood,
			Stock:       5,
		})
	}
	return out
}

func TestComputeEmptyCatalog(t *testing.T) {
	store := newFakeStore()
	engine := seededEngine(store, 1)

	entries, err := engine.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries for empty catalog, got %d", len(entries))
	}
	if store.updateCalls != 0 {
		t.Errorf("expected no stock writes, got %d", store.updateCalls)
	}
}

func TestComputeTierBounds(t *testing.T) {
	store := newFakeStore(catalogProducts(model.RarityTrash, 20, 1)...)
	engine := seededEngine(store, 42)

	for cycle := 0; cycle < 200; cycle++ {
		entries, err := engine.Compute(context.Background())
		if err != nil {
			t.Fatalf("cycle %d: Compute() error = %v", cycle, err)
		}
		// Trash always appears and picks 8 to 10 items.
		if len(entries) < 8 || len(entries) > 10 {
			t.Fatalf("cycle %d: got %d trash entries, want 8..10", cycle, len(entries))
		}
		seen := make(map[int64]bool)
		for _, e := range entries {
			if seen[e.ID] {
				t.Fatalf("cycle %d: item %d sampled twice", cycle, e.ID)
			}
			seen[e.ID] = true
			if e.Stock < 1 || e.Stock > 2 {
				t.Fatalf("cycle %d: item %d rerolled stock %d, want 1..2", cycle, e.ID, e.Stock)
			}
		}
	}
}

func TestComputeSkipsTierBelowMinimum(t *testing.T) {
	// Only 5 trash items available but the tier needs at least 8.
	store := newFakeStore(catalogProducts(model.RarityTrash, 5, 1)...)
	engine := seededEngine(store, 7)

	for cycle := 0; cycle < 50; cycle++ {
		entries, err := engine.Compute(context.Background())
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("cycle %d: expected empty rotation, got %d entries", cycle, len(entries))
		}
	}
}

func TestComputeExcludesProtectedRarities(t *testing.T) {
	products := catalogProducts(model.RarityTrash, 10, 1)
	products = append(products,
		model.Product{ID: 100, Name: "medal", Rarity: model.RarityPrize, ProductType: model.TypeCollectible, Stock: 5},
		model.Product{ID: 101, Name: "shard", Rarity: model.RarityVoid, ProductType: model.TypeArtifact, Stock: 5},
	)
	store := newFakeStore(products...)
	engine := seededEngine(store, 3)

	for cycle := 0; cycle < 100; cycle++ {
		entries, err := engine.Compute(context.Background())
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for _, e := range entries {
			if e.ID >= 100 {
				t.Fatalf("protected item %d entered the rotation", e.ID)
			}
		}
	}
	if store.stockOf(100) != 5 || store.stockOf(101) != 5 {
		t.Errorf("protected stock was rewritten: %d, %d", store.stockOf(100), store.stockOf(101))
	}
}

func TestComputePersistsRerolledStock(t *testing.T) {
	store := newFakeStore(catalogProducts(model.RarityTrash, 12, 1)...)
	engine := seededEngine(store, 99)

	entries, err := engine.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if store.updateCalls != 1 {
		t.Fatalf("expected one stock write, got %d", store.updateCalls)
	}
	for _, e := range entries {
		if got := store.lastStocks[e.ID]; got != e.Stock {
			t.Errorf("item %d: persisted stock %d, snapshot stock %d", e.ID, got, e.Stock)
		}
		if store.stockOf(e.ID) != e.Stock {
			t.Errorf("item %d: catalog stock %d, snapshot stock %d", e.ID, store.stockOf(e.ID), e.Stock)
		}
	}
}

func TestComputeRareTierAppearanceRate(t *testing.T) {
	products := catalogProducts(model.RarityTrash, 10, 1)
	products = append(products, catalogProducts(model.RarityLegendary, 3, 200)...)
	store := newFakeStore(products...)
	engine := seededEngine(store, 1234)

	const cycles = 2000
	legendaryHits := 0
	for i := 0; i < cycles; i++ {
		entries, err := engine.Compute(context.Background())
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for _, e := range entries {
			if e.Rarity == model.RarityLegendary {
				legendaryHits++
				break
			}
		}
	}

	// 4% chance per cycle. Allow a wide band for sampling noise.
	rate := float64(legendaryHits) / cycles
	if rate < 0.01 || rate > 0.09 {
		t.Errorf("legendary appearance rate %.3f over %d cycles, want near 0.04", rate, cycles)
	}
}
