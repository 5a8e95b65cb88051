package model

// Rarity is the ordered rarity tier of a product.
type Rarity string

const (
	RarityTrash     Rarity = "trash"
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityElder     Rarity = "elder"

	// Non-rotating tiers. These never enter the randomized storefront
	// and their stock is never rerolled or overwritten by catalog sync.
	RaritySpecial  Rarity = "special"
	RarityPrize    Rarity = "prize"
	RarityUnique   Rarity = "unique"
	RarityVanished Rarity = "vanished"
	RarityGlitched Rarity = "glitched"
	RarityVoid     Rarity = "void"
)

// protectedRarities are excluded from rotation and from stock overwrites.
var protectedRarities = map[Rarity]bool{
	RaritySpecial:  true,
	RarityPrize:    true,
	RarityUnique:   true,
	RarityVanished: true,
	RarityGlitched: true,
	RarityVoid:     true,
}

// IsProtected reports whether the rarity is outside the rotating set.
func (r Rarity) IsProtected() bool {
	return protectedRarities[r]
}

// ProductType is the canonical category tag of a product.
type ProductType string

const (
	TypeFood        ProductType = "food"
	TypeDrink       ProductType = "drink"
	TypeSweet       ProductType = "sweet"
	TypeDrug        ProductType = "drug"
	TypeCollectible ProductType = "collectible"
	TypeCosmetic    ProductType = "cosmetic"
	TypeWeapon      ProductType = "weapon"
	TypeResource    ProductType = "resource"
	TypeToy         ProductType = "toy"
	TypeSouvenir    ProductType = "souvenir"
	TypeArtifact    ProductType = "artifact"
	TypeCreature    ProductType = "creature"
	TypeBook        ProductType = "book"
	TypeTech        ProductType = "tech"
	TypeSticker     ProductType = "sticker"
	TypeToilet      ProductType = "toilet"
	TypeCompanion   ProductType = "companion"
)

// Product is a catalog row. The database is the source of truth for stock;
// the shop snapshot in Redis only carries a derived copy of it.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int         `json:"price"`
	Image       string      `json:"image"`
	Rarity      Rarity      `json:"rarity"`
	ProductType ProductType `json:"product_type"`
	Stock       int         `json:"stock"`
}

// ShopEntry is one denormalized storefront line in the cached snapshot.
type ShopEntry struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Price       int         `json:"price"`
	Rarity      Rarity      `json:"rarity"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
	Stock       int         `json:"stock"`
	ProductType ProductType `json:"product_type"`
}

// Entry builds a snapshot line for the product with the given rerolled stock.
func (p *Product) Entry(stock int) ShopEntry {
	return ShopEntry{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Rarity:      p.Rarity,
		Image:       p.Image,
		Description: p.Description,
		Stock:       stock,
		ProductType: p.ProductType,
	}
}
