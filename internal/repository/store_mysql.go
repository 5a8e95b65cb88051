package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"omezka-shop-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore implements Store using MySQL. Kept for deployments that share
// a MySQL instance with the rest of the game infrastructure.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a MySQL-backed game store.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLStore] Initialized with pool: max=%d, idle=%d", 10, 5)
	return &MySQLStore{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	// MySQL rejects multi-statement Exec by default, so each table is
	// created separately.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			description TEXT,
			price INT NOT NULL,
			image VARCHAR(200) NOT NULL DEFAULT '',
			rarity VARCHAR(20) NOT NULL,
			product_type VARCHAR(20) NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			INDEX idx_products_rarity (rarity)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(200) NOT NULL,
			coins INT NOT NULL DEFAULT 500,
			xp INT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			state VARCHAR(20) NOT NULL DEFAULT 'normal',
			acquired_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_inventory_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS auction_lots (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			seller_id BIGINT NOT NULL,
			item_id BIGINT NOT NULL,
			price INT NOT NULL,
			state VARCHAR(20) NOT NULL DEFAULT 'active',
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_lots_state (state, expires_at)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListRotatable returns in-stock products from rotating rarity tiers.
func (s *MySQLStore) ListRotatable(ctx context.Context) ([]model.Product, error) {
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
func (s *MySQLStore) UpdateStocks(ctx context.Context, stocks map[int64]int) error {
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
func (s *MySQLStore) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
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
func (s *MySQLStore) UpsertProduct(ctx context.Context, p model.Product, preserveStock bool) error {
	query := `
		INSERT INTO products (id, name, description, price, image, rarity, product_type, stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			description = VALUES(description),
			price = VALUES(price),
			image = VALUES(image),
			rarity = VALUES(rarity),
			product_type = VALUES(product_type),
			stock = IF(?, stock, VALUES(stock))`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Rarity, p.ProductType, p.Stock, preserveStock)
	if err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
	}
	return nil
}

// GetUserByUsername fetches a user row for login.
func (s *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
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

// PurchaseItem runs the purchase transaction under a row lock on the product.
func (s *MySQLStore) PurchaseItem(ctx context.Context, userID, productID int64) (*PurchaseReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var p model.Product
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, description, price, image, rarity, product_type, stock
		FROM products WHERE id = ? FOR UPDATE`, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Rarity, &p.ProductType, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	var u model.User
	err = tx.QueryRowContext(ctx, `
		SELECT id, username, password_hash, coins, xp, level
		FROM users WHERE id = ? FOR UPDATE`, userID).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Coins, &u.XP, &u.Level)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
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
		INSERT INTO inventory_items (user_id, product_id, quantity, state)
		VALUES (?, ?, 1, 'normal')`, u.ID, p.ID); err != nil {
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
func (s *MySQLStore) ListActiveLots(ctx context.Context) ([]model.AuctionLot, error) {
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
func (s *MySQLStore) ExpireOverdueLots(ctx context.Context, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE inventory_items i
		JOIN auction_lots l ON l.item_id = i.id
		SET i.state = 'normal'
		WHERE l.state = 'active' AND l.expires_at <= ?`, now); err != nil {
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
func (s *MySQLStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "mysql"}

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

// Close closes the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
