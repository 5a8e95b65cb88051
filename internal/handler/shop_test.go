package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/middleware"
	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
	"omezka-shop-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// stubStore satisfies repository.Store for handler tests. Purchase behavior
// is scripted per test.
type stubStore struct {
	receipt *repository.PurchaseReceipt
	err     error
}

func (s *stubStore) ListRotatable(ctx context.Context) ([]model.Product, error) { return nil, nil }
func (s *stubStore) UpdateStocks(ctx context.Context, stocks map[int64]int) error {
	return nil
}
func (s *stubStore) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return nil, repository.ErrItemNotFound
}
func (s *stubStore) UpsertProduct(ctx context.Context, p model.Product, preserveStock bool) error {
	return nil
}
func (s *stubStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubStore) PurchaseItem(ctx context.Context, userID, productID int64) (*repository.PurchaseReceipt, error) {
	return s.receipt, s.err
}
func (s *stubStore) ListActiveLots(ctx context.Context) ([]model.AuctionLot, error) {
	return nil, nil
}
func (s *stubStore) ExpireOverdueLots(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (s *stubStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return nil, nil
}
func (s *stubStore) Close() error { return nil }

func shopRouter(h *ShopHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/shop", h.GetShop)
	r.Post("/api/v1/shop/buy/{item_id}", h.BuyItem)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestGetShopColdCache(t *testing.T) {
	svc := service.NewShopService(&stubStore{}, cache.NewMemoryShopCache(), nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shop", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestGetShopOK(t *testing.T) {
	shopCache := cache.NewMemoryShopCache()
	_ = shopCache.SetSnapshot(context.Background(), []model.ShopEntry{
		{ID: 1, Name: "noodles", Price: 12, Stock: 3, ProductType: model.TypeFood},
		{ID: 2, Name: "poster", Price: 150, Stock: 1, ProductType: model.TypeCollectible},
	})
	svc := service.NewShopService(&stubStore{}, shopCache, nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shop", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	products := data["products"].([]interface{})
	if len(products) != 2 {
		t.Errorf("got %d products, want 2", len(products))
	}
}

func TestGetShopCategoryFilter(t *testing.T) {
	shopCache := cache.NewMemoryShopCache()
	_ = shopCache.SetSnapshot(context.Background(), []model.ShopEntry{
		{ID: 1, Name: "noodles", ProductType: model.TypeFood, Stock: 3},
		{ID: 2, Name: "poster", ProductType: model.TypeCollectible, Stock: 1},
	})
	svc := service.NewShopService(&stubStore{}, shopCache, nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shop?category=food", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if products := data["products"].([]interface{}); len(products) != 1 {
		t.Errorf("got %d products for category food, want 1", len(products))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shop?category=spaceship", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for unknown category, want 400", rec.Code)
	}
}

func buyRequest(itemID string, session *model.SessionData) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shop/buy/"+itemID, nil)
	if session != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), session))
	}
	return req
}

func TestBuyItemNoSession(t *testing.T) {
	svc := service.NewShopService(&stubStore{}, cache.NewMemoryShopCache(), nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buyRequest("1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestBuyItemBadID(t *testing.T) {
	svc := service.NewShopService(&stubStore{}, cache.NewMemoryShopCache(), nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buyRequest("banana", &model.SessionData{UserID: 7}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBuyItemErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"item missing", repository.ErrItemNotFound, http.StatusNotFound},
		{"user missing", repository.ErrUserNotFound, http.StatusNotFound},
		{"broke", repository.ErrInsufficientFunds, http.StatusBadRequest},
		{"sold out", repository.ErrOutOfStock, http.StatusBadRequest},
		{"backend down", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewShopService(&stubStore{err: tt.err}, cache.NewMemoryShopCache(), nil)
			r := shopRouter(NewShopHandler(svc))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, buyRequest("1", &model.SessionData{UserID: 7}))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestBuyItemSuccess(t *testing.T) {
	store := &stubStore{receipt: &repository.PurchaseReceipt{
		Product:    model.Product{ID: 1, Name: "Mechanical Hamster", Price: 120},
		NewBalance: 880,
		NewStock:   2,
		XPGranted:  200,
	}}
	svc := service.NewShopService(store, cache.NewMemoryShopCache(), nil)
	r := shopRouter(NewShopHandler(svc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buyRequest("1", &model.SessionData{UserID: 7, Username: "ada"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	msg, _ := data["message"].(string)
	if !strings.Contains(msg, "Mechanical Hamster") {
		t.Errorf("message %q does not name the product", msg)
	}
	if data["new_balance"].(float64) != 880 {
		t.Errorf("new_balance = %v, want 880", data["new_balance"])
	}
	if data["xp_granted"].(float64) != 200 {
		t.Errorf("xp_granted = %v, want 200", data["xp_granted"])
	}
}
