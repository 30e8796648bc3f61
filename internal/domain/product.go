package domain

import "time"

// ProductCategory groups the catalog.
type ProductCategory string

const (
	CategoryDairy ProductCategory = "dairy"
	CategoryMeat  ProductCategory = "meat"
)

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool {
	return c == CategoryDairy || c == CategoryMeat
}

// Product is a catalog entry. Prices are in cents.
type Product struct {
	ID          int
	Name        string
	Category    ProductCategory
	PriceCents  int64
	Description string
	Details     string
	ImageURL    string
	Stock       int
	CreatedAt   time.Time
}
