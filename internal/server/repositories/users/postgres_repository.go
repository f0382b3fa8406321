package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, password_hash)
         VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, refresh_token, refresh_token_expires_at FROM users
		 WHERE username = $1
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByValidRefreshToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, refresh_token, refresh_token_expires_at FROM users
		 WHERE refresh_token = $1 AND refresh_token_expires_at > $2
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, token, now))
}

func (r *PostgresRepository) UpdateRefreshState(ctx context.Context, userID, prevToken, newToken string, expiresAt time.Time) error {

	query :=
		`UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3
		 WHERE id = $1 AND refresh_token IS NOT DISTINCT FROM $4
		 `

	res, err := r.db.ExecContext(ctx, query,
		userID, newToken, expiresAt, nullableToken(prevToken))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorConflict
	}

	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var refreshToken sql.NullString
	var refreshExpires sql.NullTime

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &refreshToken, &refreshExpires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	user.RefreshTokenExpiresAt = refreshExpires.Time
	return user, nil
}

func nullableToken(token string) sql.NullString {
	return sql.NullString{String: token, Valid: token != ""}
}
