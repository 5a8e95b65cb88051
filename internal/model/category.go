package model

import "strings"

// CategoryTable resolves loose storefront category names to canonical
// product types. The table is built once at startup; an unknown name is a
// hard miss so that typos surface as 400s instead of empty shop pages.
type CategoryTable struct {
	Version  int
	synonyms map[string][]ProductType
}

// DefaultCategoryTable returns the built-in synonym table.
func DefaultCategoryTable() *CategoryTable {
	return &CategoryTable{
		Version: 1,
		synonyms: map[string][]ProductType{
			"food":        {TypeFood, TypeDrink, TypeSweet},
			"grocery":     {TypeFood, TypeDrink, TypeSweet},
			"drink":       {TypeDrink},
			"sweet":       {TypeSweet},
			"drug":        {TypeDrug},
			"drugs":       {TypeDrug},
			"pharmacy":    {TypeDrug},
			"book":        {TypeBook},
			"books":       {TypeBook},
			"sticker":     {TypeSticker},
			"toy":         {TypeToy},
			"tech":        {TypeTech},
			"gadget":      {TypeTech},
			"toilet":      {TypeToilet},
			"souvenir":    {TypeSouvenir},
			"cosmetic":    {TypeCosmetic},
			"creature":    {TypeCreature},
			"zoo":         {TypeCreature},
			"weapon":      {TypeWeapon},
			"resource":    {TypeResource},
			"artifact":    {TypeArtifact},
			"companion":   {TypeCompanion},
			"collectible": {TypeCollectible, TypeSouvenir, TypeToy, TypeSticker},
			"collector":   {TypeCollectible, TypeSouvenir, TypeToy, TypeSticker},
		},
	}
}

// Resolve maps a category query to the set of product types it covers.
// Matching is case-insensitive. ok is false for unknown categories.
func (t *CategoryTable) Resolve(category string) ([]ProductType, bool) {
	types, ok := t.synonyms[strings.ToLower(strings.TrimSpace(category))]
	return types, ok
}
