package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	// Image is the storage key of the attached image, empty when none.
	Image       string
	Tags        []*CatalogItem
	Ingredients []*CatalogItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TagIDs returns the ids of the recipe's tags in order.
func (r *Recipe) TagIDs() []int64 {
	return itemIDs(r.Tags)
}

// IngredientIDs returns the ids of the recipe's ingredients in order.
func (r *Recipe) IngredientIDs() []int64 {
	return itemIDs(r.Ingredients)
}

func itemIDs(items []*CatalogItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// RecipeFilter narrows a recipe listing. Ids within a slice are OR-ed, the
// two slices are AND-ed; an empty slice does not filter.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}
