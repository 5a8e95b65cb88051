package repository

import (
	"database/sql"

	"omezka-shop-api/internal/model"
)

// purchaseXP is the experience granted per purchased unit.
const purchaseXP = 200

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
			&p.Image, &p.Rarity, &p.ProductType, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanLots(rows *sql.Rows) ([]model.AuctionLot, error) {
	var lots []model.AuctionLot
	for rows.Next() {
		var l model.AuctionLot
		if err := rows.Scan(&l.ID, &l.SellerID, &l.ItemID, &l.Price,
			&l.State, &l.ExpiresAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
