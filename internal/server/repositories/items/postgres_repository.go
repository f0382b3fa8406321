package items

import (
	"context"
	"fmt"

	"github.com/avasiljevs/stockroom/internal/dbx"
	"github.com/avasiljevs/stockroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {

	query :=
		`INSERT INTO items (product_id, quantity)
         VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) SelectByProduct(ctx context.Context, productID int64) ([]*models.Item, error) {
	query :=
		`SELECT id, product_id, quantity FROM items
		 WHERE product_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Item, 0)
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteByProduct(ctx context.Context, productID int64) error {

	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
