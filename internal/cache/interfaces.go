package cache

import (
	"context"

	"omezka-shop-api/internal/model"
)

// ShopCache holds the derived storefront state: the serialized snapshot and
// the hour of the last full reset. Redis in production, memory for
// development and tests. The cache is disposable; losing it only means the
// shop rebuilds on the next rotation.
type ShopCache interface {
	// GetSnapshot returns the cached storefront. Returns ErrCacheMiss
	// when no snapshot has been written yet.
	GetSnapshot(ctx context.Context) ([]model.ShopEntry, error)

	// SetSnapshot replaces the cached storefront.
	SetSnapshot(ctx context.Context, entries []model.ShopEntry) error

	// LastResetHour returns the hour-of-day of the last full reset.
	// ok is false when no reset has been recorded.
	LastResetHour(ctx context.Context) (hour int, ok bool, err error)

	// SetLastResetHour records the hour-of-day of a full reset.
	SetLastResetHour(ctx context.Context, hour int) error
}

// Notifier fans a snapshot out to subscribed clients. Best effort; callers
// log failures and move on.
type Notifier interface {
	PublishShopUpdate(ctx context.Context, entries []model.ShopEntry) error
}

// CacheError is a sentinel error type for cache failures.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
