package models

import "fmt"

// CatalogKind tells tags and ingredients apart. Both are user-owned named
// records with identical storage shape.
type CatalogKind int

const (
	KindTag CatalogKind = iota + 1
	KindIngredient
)

func (k CatalogKind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindIngredient:
		return "ingredient"
	default:
		return fmt.Sprintf("CatalogKind(%d)", int(k))
	}
}

// CatalogItem is a Tag or an Ingredient.
type CatalogItem struct {
	ID     int64
	UserID int64
	Name   string
}
