// Package items declares the repository contract for product stock lines.
package items

import (
	"context"

	"github.com/avasiljevs/stockroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	SelectByProduct(ctx context.Context, productID int64) ([]*models.Item, error)

	// DeleteByProduct removes every item of the product; deleting for a
	// product without items is not an error.
	DeleteByProduct(ctx context.Context, productID int64) error
}
