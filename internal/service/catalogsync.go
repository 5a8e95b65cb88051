package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
)

// SyncCatalogFromFile loads product definitions from a JSON file and
// upserts them into the catalog. Existing rows keep their current stock;
// only newly inserted rows take the stock from the file. Missing files are
// not an error so deployments without seed data still boot.
func SyncCatalogFromFile(ctx context.Context, store repository.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[CatalogSync] No products file at %s, skipping", path)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read products file: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return 0, fmt.Errorf("failed to parse products file: %w", err)
	}

	synced := 0
	for _, p := range products {
		if p.ID == 0 || p.Name == "" {
			log.Printf("[CatalogSync] Skipping malformed product entry %+v", p)
			continue
		}
		if err := store.UpsertProduct(ctx, p, true); err != nil {
			return synced, err
		}
		synced++
	}

	log.Printf("[CatalogSync] Synced %d products from %s", synced, path)
	return synced, nil
}
