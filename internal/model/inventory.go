package model

import "time"

// Inventory item states.
const (
	ItemStateNormal    = "normal"
	ItemStateAuctioned = "auctioned"
)

// InventoryItem is one owned unit of a product. Every purchase creates a
// distinct row; quantities are never merged at this layer.
type InventoryItem struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	State      string    `json:"state"`
	AcquiredAt time.Time `json:"acquired_at"`
}
