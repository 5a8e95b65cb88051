package service

import (
	"context"
	"errors"
	"log"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
)

// ErrUnknownCategory is returned when the category query does not resolve
// through the synonym table.
var ErrUnknownCategory = errors.New("unknown category")

// ShopService serves the cached storefront and runs purchases. The catalog
// store is authoritative; the snapshot is a read-optimization that the
// purchase path patches best-effort after commit.
type ShopService struct {
	store      repository.Store
	cache      cache.ShopCache
	notifier   cache.Notifier
	categories *model.CategoryTable
}

// NewShopService creates a shop service. notifier may be nil.
func NewShopService(store repository.Store, shopCache cache.ShopCache, notifier cache.Notifier) *ShopService {
	return &ShopService{
		store:      store,
		cache:      shopCache,
		notifier:   notifier,
		categories: model.DefaultCategoryTable(),
	}
}

// GetShop returns the current snapshot, optionally filtered by category.
// Returns cache.ErrCacheMiss before the first rotation and
// ErrUnknownCategory for names missing from the synonym table.
func (s *ShopService) GetShop(ctx context.Context, category string) ([]model.ShopEntry, error) {
	entries, err := s.cache.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return entries, nil
	}

	types, ok := s.categories.Resolve(category)
	if !ok {
		return nil, ErrUnknownCategory
	}

	allowed := make(map[model.ProductType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	filtered := make([]model.ShopEntry, 0, len(entries))
	for _, e := range entries {
		if allowed[e.ProductType] {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Purchase buys one unit of a product for the user. The database
// transaction is the consistency boundary; the snapshot patch afterwards
// is best-effort and any failure there only leaves the display stale until
// the next rotation.
func (s *ShopService) Purchase(ctx context.Context, userID, productID int64) (*repository.PurchaseReceipt, error) {
	receipt, err := s.store.PurchaseItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	s.patchSnapshot(ctx, productID)
	return receipt, nil
}

// patchSnapshot decrements the displayed stock of one item, floor 0.
func (s *ShopService) patchSnapshot(ctx context.Context, productID int64) {
	entries, err := s.cache.GetSnapshot(ctx)
	if err != nil {
		if err != cache.ErrCacheMiss {
			log.Printf("[ShopService] Snapshot patch read failed: %v", err)
		}
		return
	}

	patched := false
	for i := range entries {
		if entries[i].ID == productID {
			if entries[i].Stock > 0 {
				entries[i].Stock--
			}
			patched = true
			break
		}
	}
	if !patched {
		return
	}

	if err := s.cache.SetSnapshot(ctx, entries); err != nil {
		log.Printf("[ShopService] Snapshot patch write failed: %v", err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishShopUpdate(ctx, entries); err != nil {
			log.Printf("[ShopService] Fan-out failed: %v", err)
		}
	}
}
