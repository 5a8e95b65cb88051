package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/middleware"
	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
	"omezka-shop-api/internal/service"
	"omezka-shop-api/pkg/apierror"
	"omezka-shop-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ShopHandler handles storefront HTTP requests.
type ShopHandler struct {
	shop *service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shop *service.ShopService) *ShopHandler {
	return &ShopHandler{shop: shop}
}

// GetShop handles GET /api/v1/shop?category=<name>
func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	entries, err := h.shop.GetShop(r.Context(), category)
	switch err {
	case nil:
	case cache.ErrCacheMiss:
		// Cold start: nothing cached until the first rotation lands.
		response.Error(w, apierror.InternalError("shop is not available yet"))
		return
	case service.ErrUnknownCategory:
		response.Error(w, apierror.BadRequest(fmt.Sprintf("unknown category: %s", category)))
		return
	default:
		response.Error(w, apierror.InternalError("failed to load shop"))
		return
	}

	if entries == nil {
		entries = []model.ShopEntry{}
	}

	response.OK(w, map[string]interface{}{"products": entries})
}

// BuyItem handles POST /api/v1/shop/buy/{item_id}
func (h *ShopHandler) BuyItem(w http.ResponseWriter, r *http.Request) {
	session := middleware.CurrentSession(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("item_id must be an integer"))
		return
	}

	receipt, err := h.shop.Purchase(r.Context(), session.UserID, itemID)
	switch err {
	case nil:
	case repository.ErrItemNotFound, repository.ErrUserNotFound:
		response.Error(w, apierror.NotFound("user or item not found"))
		return
	case repository.ErrInsufficientFunds:
		response.Error(w, apierror.BadRequest("not enough coins"))
		return
	case repository.ErrOutOfStock:
		response.Error(w, apierror.BadRequest("item is out of stock"))
		return
	default:
		response.Error(w, apierror.InternalError("purchase failed"))
		return
	}

	response.OK(w, map[string]interface{}{
		"message":     fmt.Sprintf("Congratulations on your purchase of %s!", receipt.Product.Name),
		"new_balance": receipt.NewBalance,
		"new_stock":   receipt.NewStock,
		"xp_granted":  receipt.XPGranted,
	})
}
