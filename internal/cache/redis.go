package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"omezka-shop-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// ShopUpdate is the payload published on the shop channel after every
// snapshot mutation.
type ShopUpdate struct {
	Event    string            `json:"event"`
	Products []model.ShopEntry `json:"products"`
}

// RedisShopCache stores the storefront snapshot and rotation state in Redis
// and doubles as the pub/sub Notifier for shop updates.
type RedisShopCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisShopCache wraps an existing Redis client. keyPrefix namespaces
// all keys (e.g. "omezka:shop").
func NewRedisShopCache(client *redis.Client, keyPrefix string) *RedisShopCache {
	if keyPrefix == "" {
		keyPrefix = "omezka:shop"
	}
	return &RedisShopCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisShopCache) snapshotKey() string  { return c.keyPrefix + ":snapshot" }
func (c *RedisShopCache) resetHourKey() string { return c.keyPrefix + ":reset_hour" }

// UpdateChannel is the pub/sub channel carrying ShopUpdate payloads.
func (c *RedisShopCache) UpdateChannel() string { return c.keyPrefix + ":updates" }

// GetSnapshot returns the cached storefront.
func (c *RedisShopCache) GetSnapshot(ctx context.Context) ([]model.ShopEntry, error) {
	data, err := c.client.Get(ctx, c.snapshotKey()).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var entries []model.ShopEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return entries, nil
}

// SetSnapshot replaces the cached storefront. No TTL: the snapshot lives
// until the next rotation overwrites it.
func (c *RedisShopCache) SetSnapshot(ctx context.Context, entries []model.ShopEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.snapshotKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LastResetHour returns the hour-of-day of the last full reset.
func (c *RedisShopCache) LastResetHour(ctx context.Context) (int, bool, error) {
	raw, err := c.client.Get(ctx, c.resetHourKey()).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read reset hour: %w", err)
	}

	hour, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt reset hour %q: %w", raw, err)
	}
	return hour, true, nil
}

// SetLastResetHour records the hour-of-day of a full reset.
func (c *RedisShopCache) SetLastResetHour(ctx context.Context, hour int) error {
	if err := c.client.Set(ctx, c.resetHourKey(), strconv.Itoa(hour), 0).Err(); err != nil {
		return fmt.Errorf("failed to write reset hour: %w", err)
	}
	return nil
}

// PublishShopUpdate broadcasts the snapshot on the update channel.
func (c *RedisShopCache) PublishShopUpdate(ctx context.Context, entries []model.ShopEntry) error {
	payload, err := json.Marshal(ShopUpdate{Event: "shop_update", Products: entries})
	if err != nil {
		return fmt.Errorf("failed to encode shop update: %w", err)
	}
	if err := c.client.Publish(ctx, c.UpdateChannel(), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish shop update: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription on the update channel. The caller
// owns the returned subscription and must close it.
func (c *RedisShopCache) Subscribe(ctx context.Context) *redis.PubSub {
	return c.client.Subscribe(ctx, c.UpdateChannel())
}
