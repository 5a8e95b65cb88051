package service

import (
	"context"
	"sync"
	"time"

	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests.
type fakeStore struct {
	mu       sync.Mutex
	products map[int64]model.Product

	updateCalls  int
	lastStocks   map[int64]int
	purchaseErr  error
	purchaseResp *repository.PurchaseReceipt
}

func newFakeStore(products ...model.Product) *fakeStore {
	s := &fakeStore{products: make(map[int64]model.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) ListRotatable(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Product
	for _, p := range s.products {
		if !p.Rarity.IsProtected() && p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateStocks(ctx context.Context, stocks map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateCalls++
	s.lastStocks = stocks
	for id, stock := range stocks {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		p.Stock = stock
		s.products[id] = p
	}
	return nil
}

func (s *fakeStore) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return &p, nil
}

func (s *fakeStore) UpsertProduct(ctx context.Context, p model.Product, preserveStock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.products[p.ID]; ok && preserveStock {
		p.Stock = prev.Stock
	}
	s.products[p.ID] = p
	return nil
}

func (s *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (s *fakeStore) PurchaseItem(ctx context.Context, userID, productID int64) (*repository.PurchaseReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.purchaseErr != nil {
		return nil, s.purchaseErr
	}
	if s.purchaseResp != nil {
		return s.purchaseResp, nil
	}

	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	if p.Stock <= 0 {
		return nil, repository.ErrOutOfStock
	}
	p.Stock--
	s.products[productID] = p
	return &repository.PurchaseReceipt{Product: p, NewStock: p.Stock, XPGranted: 200}, nil
}

func (s *fakeStore) ListActiveLots(ctx context.Context) ([]model.AuctionLot, error) {
	return nil, nil
}

func (s *fakeStore) ExpireOverdueLots(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (s *fakeStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

// stubSource returns a fixed candidate snapshot.
type stubSource struct {
	entries []model.ShopEntry
	err     error
}

func (s *stubSource) Compute(ctx context.Context) ([]model.ShopEntry, error) {
	out := make([]model.ShopEntry, len(s.entries))
	copy(out, s.entries)
	return out, s.err
}

// captureNotifier records every published snapshot.
type captureNotifier struct {
	mu        sync.Mutex
	published [][]model.ShopEntry
}

func (n *captureNotifier) PublishShopUpdate(ctx context.Context, entries []model.ShopEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, entries)
	return nil
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.published)
}
