package cache

import (
	"context"
	"testing"

	"omezka-shop-api/internal/model"
)

func TestMemoryShopCacheMiss(t *testing.T) {
	c := NewMemoryShopCache()

	if _, err := c.GetSnapshot(context.Background()); err != ErrCacheMiss {
		t.Errorf("GetSnapshot() error = %v, want ErrCacheMiss", err)
	}
	if _, ok, err := c.LastResetHour(context.Background()); ok || err != nil {
		t.Errorf("LastResetHour() ok = %v, err = %v; want false, nil", ok, err)
	}
}

func TestMemoryShopCacheRoundTrip(t *testing.T) {
	c := NewMemoryShopCache()
	ctx := context.Background()

	in := []model.ShopEntry{
		{ID: 1, Name: "noodles", Stock: 3, ProductType: model.TypeFood},
		{ID: 2, Name: "poster", Stock: 1, ProductType: model.TypeCollectible},
	}
	if err := c.SetSnapshot(ctx, in); err != nil {
		t.Fatalf("SetSnapshot() error = %v", err)
	}

	out, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("GetSnapshot() = %+v", out)
	}

	// Mutating the returned slice must not leak into the cache.
	out[0].Stock = 0
	again, _ := c.GetSnapshot(ctx)
	if again[0].Stock != 3 {
		t.Errorf("cached stock = %d after caller mutation, want 3", again[0].Stock)
	}

	// An empty snapshot is a hit, not a miss.
	if err := c.SetSnapshot(ctx, nil); err != nil {
		t.Fatalf("SetSnapshot(nil) error = %v", err)
	}
	empty, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot() after empty set error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetSnapshot() = %+v, want empty", empty)
	}
}

func TestMemoryShopCacheResetHour(t *testing.T) {
	c := NewMemoryShopCache()
	ctx := context.Background()

	if err := c.SetLastResetHour(ctx, 14); err != nil {
		t.Fatalf("SetLastResetHour() error = %v", err)
	}
	hour, ok, err := c.LastResetHour(ctx)
	if err != nil || !ok || hour != 14 {
		t.Errorf("LastResetHour() = %d, %v, %v; want 14, true, nil", hour, ok, err)
	}
}
