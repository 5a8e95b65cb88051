package handler

import (
	"net/http"

	"omezka-shop-api/internal/model"
	"omezka-shop-api/internal/repository"
	"omezka-shop-api/pkg/apierror"
	"omezka-shop-api/pkg/response"
)

// AuctionHandler serves the auction house listing.
type AuctionHandler struct {
	store repository.Store
}

// NewAuctionHandler creates a new auction handler.
func NewAuctionHandler(store repository.Store) *AuctionHandler {
	return &AuctionHandler{store: store}
}

// ListLots handles GET /api/v1/auction
func (h *AuctionHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.store.ListActiveLots(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load auction lots"))
		return
	}
	if lots == nil {
		lots = []model.AuctionLot{}
	}

	response.OK(w, map[string]interface{}{"lots": lots})
}
