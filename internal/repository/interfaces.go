package repository

import (
	"context"
	"errors"
	"time"

	"omezka-shop-api/internal/model"
)

// Business-rule rejections and lookup failures surfaced by the store.
// Handlers map these to HTTP status codes.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOutOfStock        = errors.New("out of stock")
)

// PurchaseReceipt summarizes a committed purchase.
type PurchaseReceipt struct {
	Product    model.Product `json:"product"`
	NewBalance int           `json:"new_balance"`
	NewStock   int           `json:"new_stock"`
	XPGranted  int           `json:"xp_granted"`
}

// Store defines data access for the game database. All three SQL backends
// (sqlite, postgres, mysql) implement it.
type Store interface {
	// ListRotatable returns products with stock > 0 whose rarity belongs
	// to the rotating set.
	ListRotatable(ctx context.Context) ([]model.Product, error)

	// UpdateStocks overwrites the persisted stock for the given products.
	// The rotation engine is the sole caller for rotating tiers.
	UpdateStocks(ctx context.Context, stocks map[int64]int) error

	// GetProduct fetches a single catalog row. Returns ErrItemNotFound
	// when absent.
	GetProduct(ctx context.Context, id int64) (*model.Product, error)

	// UpsertProduct inserts or updates a catalog row by id. When
	// preserveStock is true an existing row keeps its current stock.
	UpsertProduct(ctx context.Context, p model.Product, preserveStock bool) error

	// GetUserByUsername fetches a user for login. Returns ErrUserNotFound
	// when absent.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// PurchaseItem executes the whole purchase in one transaction: row
	// lock on the product, balance debit, stock decrement, XP grant and
	// inventory insert. Returns ErrItemNotFound, ErrUserNotFound,
	// ErrInsufficientFunds or ErrOutOfStock on rejection.
	PurchaseItem(ctx context.Context, userID, productID int64) (*PurchaseReceipt, error)

	// ListActiveLots returns auction lots that have not expired yet.
	ListActiveLots(ctx context.Context) ([]model.AuctionLot, error)

	// ExpireOverdueLots closes lots past their deadline and returns the
	// escrowed items to normal state. Returns the number of closed lots.
	ExpireOverdueLots(ctx context.Context, now time.Time) (int64, error)

	// GetStats returns counters about the game database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the underlying connection pool.
	Close() error
}
