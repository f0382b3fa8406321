// Package products declares the repository contract for the product catalog.
package products

import (
	"context"

	"github.com/avasiljevs/stockroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)

	// SelectPage returns one page of products ordered by id.
	SelectPage(ctx context.Context, limit, offset int) ([]*models.Product, error)

	// Update rewrites mutable product fields; updating an absent product
	// returns a not-found error.
	Update(ctx context.Context, product *models.Product) error

	Delete(ctx context.Context, id int64) error

	// SetImageKey stores the object-storage key of the product image.
	SetImageKey(ctx context.Context, id int64, key string) error
}
