package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/dbx"
	"github.com/avasiljevs/stockroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {

	query :=
		`INSERT INTO products (product_name, created_by, created_on)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		product.ProductName, product.CreatedBy, product.CreatedOn).Scan(&product.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return product, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query :=
		`SELECT id, product_name, created_by, created_on, modified_by, modified_on, image_key FROM products
		 WHERE id = $1
		 `

	product := &models.Product{}
	var modifiedBy, imageKey sql.NullString
	var modifiedOn sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.ProductName, &product.CreatedBy, &product.CreatedOn,
		&modifiedBy, &modifiedOn, &imageKey)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	product.ModifiedBy = modifiedBy.String
	product.ModifiedOn = modifiedOn.Time
	product.ImageKey = imageKey.String
	return product, nil
}

func (r *PostgresRepository) SelectPage(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query :=
		`SELECT id, product_name, created_by, created_on, modified_by, modified_on, image_key FROM products
		 ORDER BY id
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Product, 0)
	for rows.Next() {
		product := &models.Product{}
		var modifiedBy, imageKey sql.NullString
		var modifiedOn sql.NullTime

		err := rows.Scan(&product.ID, &product.ProductName, &product.CreatedBy, &product.CreatedOn,
			&modifiedBy, &modifiedOn, &imageKey)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		product.ModifiedBy = modifiedBy.String
		product.ModifiedOn = modifiedOn.Time
		product.ImageKey = imageKey.String
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, product *models.Product) error {

	query :=
		`UPDATE products SET product_name = $2, modified_by = $3, modified_on = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		product.ID, product.ProductName, product.ModifiedBy, product.ModifiedOn)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) SetImageKey(ctx context.Context, id int64, key string) error {

	res, err := r.db.ExecContext(ctx, `UPDATE products SET image_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
