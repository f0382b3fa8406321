package models

import "time"

// Product is a catalog entry. ImageKey is the object-storage key of the
// product image, empty when no image has been uploaded.
type Product struct {
	ID          int64
	ProductName string
	CreatedBy   string
	CreatedOn   time.Time
	ModifiedBy  string
	ModifiedOn  time.Time
	ImageKey    string
}

// Item is a stock line belonging to a product.
type Item struct {
	ID        int64
	ProductID int64
	Quantity  int
}
