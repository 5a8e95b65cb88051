package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
)

// tierPolicy controls how one rarity tier contributes to a rotation:
// a d100 appearance chance, how many distinct items to pick and what
// stock each picked item is rerolled to.
type tierPolicy struct {
	Chance   int
	MinItems int
	MaxItems int
	MinStock int
	MaxStock int
}

// rotationOrder fixes tier iteration so cycles are reproducible per seed.
var rotationOrder = []model.Rarity{
	model.RarityTrash,
	model.RarityCommon,
	model.RarityRare,
	model.RarityEpic,
	model.RarityLegendary,
	model.RarityElder,
}

var rotationPolicy = map[model.Rarity]tierPolicy{
	model.RarityTrash:     {Chance: 100, MinItems: 8, MaxItems: 10, MinStock: 1, MaxStock: 2},
	model.RarityCommon:    {Chance: 85, MinItems: 8, MaxItems: 15, MinStock: 2, MaxStock: 3},
	model.RarityRare:      {Chance: 35, MinItems: 2, MaxItems: 4, MinStock: 1, MaxStock: 1},
	model.RarityEpic:      {Chance: 12, MinItems: 1, MaxItems: 2, MinStock: 1, MaxStock: 1},
	model.RarityLegendary: {Chance: 4, MinItems: 1, MaxItems: 1, MinStock: 1, MaxStock: 1},
	model.RarityElder:     {Chance: 1, MinItems: 1, MaxItems: 1, MinStock: 1, MaxStock: 1},
}

// RotationEngine computes storefront candidates by weighted-random sampling
// per rarity tier and persists the rerolled stock back to the catalog.
type RotationEngine struct {
	store repository.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRotationEngine creates an engine seeded from the clock.
func NewRotationEngine(store repository.Store) *RotationEngine {
	return &RotationEngine{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// randInt returns a uniform integer in [lo, hi].
func (e *RotationEngine) randInt(lo, hi int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo + e.rng.Intn(hi-lo+1)
}

func (e *RotationEngine) shuffle(products []model.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})
}

// Compute produces a candidate snapshot and writes the rerolled stock of
// every sampled product back to the catalog. The stock write happens on
// every invocation, even when the scheduler later merges rather than
// replaces the public snapshot.
func (e *RotationEngine) Compute(ctx context.Context) ([]model.ShopEntry, error) {
	products, err := e.store.ListRotatable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(products) == 0 {
		log.Printf("[RotationEngine] No products available for rotation")
		return nil, nil
	}

	byRarity := make(map[model.Rarity][]model.Product)
	for _, p := range products {
		if _, ok := rotationPolicy[p.Rarity]; ok {
			byRarity[p.Rarity] = append(byRarity[p.Rarity], p)
		}
	}

	var entries []model.ShopEntry
	stocks := make(map[int64]int)

	for _, rarity := range rotationOrder {
		pol := rotationPolicy[rarity]

		if e.randInt(1, 100) > pol.Chance {
			continue
		}

		available := byRarity[rarity]
		if len(available) == 0 {
			continue
		}

		maxItems := pol.MaxItems
		if maxItems > len(available) {
			maxItems = len(available)
		}
		if pol.MinItems > maxItems {
			continue
		}

		n := e.randInt(pol.MinItems, maxItems)
		e.shuffle(available)

		for _, p := range available[:n] {
			stock := e.randInt(pol.MinStock, pol.MaxStock)
			stocks[p.ID] = stock
			entries = append(entries, p.Entry(stock))
		}
	}

	if len(stocks) > 0 {
		if err := e.store.UpdateStocks(ctx, stocks); err != nil {
			return nil, fmt.Errorf("failed to persist rerolled stock: %w", err)
		}
	}

	return entries, nil
}
