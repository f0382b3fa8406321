package repomanager

import (
	"context"
	"database/sql"

	"github.com/avasiljevs/stockroom/internal/dbx"
	"github.com/avasiljevs/stockroom/internal/server/repositories/items"
	"github.com/avasiljevs/stockroom/internal/server/repositories/products"
	"github.com/avasiljevs/stockroom/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Items(db dbx.DBTX) items.Repository
}
