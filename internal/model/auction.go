package model

import "time"

// Auction lot states.
const (
	LotStateActive  = "active"
	LotStateExpired = "expired"
)

// AuctionLot is a player-listed inventory item with a hard expiry. Expired
// lots are closed by the background sweeper, which returns the escrowed
// item to its owner's inventory.
type AuctionLot struct {
	ID        int64     `json:"id"`
	SellerID  int64     `json:"seller_id"`
	ItemID    int64     `json:"item_id"`
	Price     int       `json:"price"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
