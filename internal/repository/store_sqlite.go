package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"omezka-shop-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements Store using SQLite. Default backend for local
// development and single-instance deployments. SQLite has no FOR UPDATE;
// a single-connection pool serializes writers instead, which gives the
// purchase path the same one-at-a-time guarantee.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite-backed game store.
// dbPath is the path to the database file (e.g., "./data/omezka.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized at %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price INTEGER NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL,
		product_type TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0)
	);
	CREATE INDEX IF NOT EXISTS idx_products_rarity ON products(rarity);
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		coins INTEGER NOT NULL DEFAULT 500,
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL DEFAULT 1,
		state TEXT NOT NULL DEFAULT 'normal',
		acquired_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id);
	CREATE TABLE IF NOT EXISTS auction_lots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller_id INTEGER NOT NULL REFERENCES users(id),
		item_id INTEGER NOT NULL REFERENCES inventory_items(id),
		price INTEGER NOT NULL,
		state TEXT NOT NULL DEFAULT 'active',
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_lots_state ON auction_lots(state, expires_at);
	`
	_, err := db.Exec(query)
	return err
}

// ListRotatable returns in-stock products from rotating rarity tiers.
func (s *SQLiteStore) ListRotatable(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, description, price, image, rarity, product_type, stock
		FROM products
		WHERE stock > 0
		  AND rarity NOT IN ('special', 'prize', 'unique', 'vanished', 'glitched', 'void')`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rotatable products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateStocks overwrites stock for the given product ids in one transaction.
func (s *SQLiteStore) UpdateStocks(ctx context.Context, stocks map[int64]int) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE products SET stock = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare stock update: %w", err)
	}
	defer stmt.Close()

	for id, stock := range stocks {
		if _, err := stmt.ExecContext(ctx, stock, id); err != nil {
			return fmt.Errorf("failed to update stock for product %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stock updates: %w", err)
	}
	return nil
}

// GetProduct fetches one catalog row.
func (s *SQLiteStore) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT id, name, description, price, image, rarity, product_type, stock
		FROM products WHERE id = ?`

	var p model.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Rarity, &p.ProductType, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// UpsertProduct inserts or updates a catalog row by id.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p model.Product, preserveStock bool) error {
	query := `
		INSERT INTO products (id, name, description, price, image, rarity, product_type, stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			image = excluded.image,
			rarity = excluded.rarity,
			product_type = excluded.product_type,
			stock = CASE WHEN ? THEN products.stock ELSE excluded.stock END`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Rarity, p.ProductType, p.Stock, preserveStock)
	if err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
	}
	return nil
}

// GetUserByUsername fetches a user row for login.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, password_hash, coins, xp, level FROM users WHERE username = ?`

	var u model.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Coins, &u.XP, &u.Level)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// PurchaseItem runs the purchase transaction. The single-writer pool stands
// in for the row lock the SQL backends with FOR UPDATE use.
func (s *SQLiteStore) PurchaseItem(ctx context.Context, userID, productID int64) (*PurchaseReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var p model.Product
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, description, price, image, rarity, product_type, stock
		FROM products WHERE id = ?`, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Rarity, &p.ProductType, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var u model.User
	err = tx.QueryRowContext(ctx, `
		SELECT id, username, password_hash, coins, xp, level
		FROM users WHERE id = ?`, userID).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Coins, &u.XP, &u.Level)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	if u.Coins < p.Price {
		return nil, ErrInsufficientFunds
	}
	if p.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	u.Coins -= p.Price
	p.Stock--
	u.AddXP(purchaseXP)

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = ? WHERE id = ?`, p.Stock, p.ID); err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET coins = ?, xp = ?, level = ? WHERE id = ?`,
		u.Coins, u.XP, u.Level, u.ID); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_items (user_id, product_id, quantity, state, acquired_at)
		VALUES (?, ?, 1, 'normal', ?)`, u.ID, p.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to insert inventory item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return &PurchaseReceipt{
		Product:    p,
		NewBalance: u.Coins,
		NewStock:   p.Stock,
		XPGranted:  purchaseXP,
	}, nil
}

// ListActiveLots returns auction lots still open for bidding.
func (s *SQLiteStore) ListActiveLots(ctx context.Context) ([]model.AuctionLot, error) {
	query := `
		SELECT id, seller_id, item_id, price, state, expires_at, created_at
		FROM auction_lots
		WHERE state = 'active'
		ORDER BY expires_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// ExpireOverdueLots closes expired lots and releases their items.
func (s *SQLiteStore) ExpireOverdueLots(ctx context.Context, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE inventory_items SET state = 'normal'
		WHERE id IN (
			SELECT item_id FROM auction_lots WHERE state = 'active' AND expires_at <= ?
		)`, now); err != nil {
		return 0, fmt.Errorf("failed to release escrowed items: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots SET state = 'expired'
		WHERE state = 'active' AND expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lots: %w", err)
	}

	closed, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit lot expiry: %w", err)
	}
	return closed, nil
}

// GetStats returns counters about the game database.
func (s *SQLiteStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "sqlite"}

	counts := map[string]string{
		"total_products":    "SELECT COUNT(*) FROM products",
		"in_stock_products": "SELECT COUNT(*) FROM products WHERE stock > 0",
		"total_users":       "SELECT COUNT(*) FROM users",
		"inventory_items":   "SELECT COUNT(*) FROM inventory_items",
		"active_lots":       "SELECT COUNT(*) FROM auction_lots WHERE state = 'active'",
	}
	for name, query := range counts {
		var n int64
		if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		stats[name] = n
	}
	return stats, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
