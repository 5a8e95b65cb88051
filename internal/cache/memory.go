package cache

import (
	"context"
	"sync"

	"omezka-shop-api/internal/model"
)

// MemoryShopCache is an in-memory implementation of ShopCache.
// Use this for development/testing or when Redis is unavailable.
type MemoryShopCache struct {
	mu        sync.RWMutex
	snapshot  []model.ShopEntry
	hasSnap   bool
	resetHour int
	hasHour   bool
}

// NewMemoryShopCache creates an empty in-memory shop cache.
func NewMemoryShopCache() *MemoryShopCache {
	return &MemoryShopCache{}
}

// GetSnapshot returns a copy of the cached storefront.
func (c *MemoryShopCache) GetSnapshot(ctx context.Context) ([]model.ShopEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasSnap {
		return nil, ErrCacheMiss
	}

	out := make([]model.ShopEntry, len(c.snapshot))
	copy(out, c.snapshot)
	return out, nil
}

// SetSnapshot replaces the cached storefront.
func (c *MemoryShopCache) SetSnapshot(ctx context.Context, entries []model.ShopEntry) error {
	snap := make([]model.ShopEntry, len(entries))
	copy(snap, entries)

	c.mu.Lock()
	c.snapshot = snap
	c.hasSnap = true
	c.mu.Unlock()
	return nil
}

// LastResetHour returns the hour-of-day of the last full reset.
func (c *MemoryShopCache) LastResetHour(ctx context.Context) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetHour, c.hasHour, nil
}

// SetLastResetHour records the hour-of-day of a full reset.
func (c *MemoryShopCache) SetLastResetHour(ctx context.Context, hour int) error {
	c.mu.Lock()
	c.resetHour = hour
	c.hasHour = true
	c.mu.Unlock()
	return nil
}
