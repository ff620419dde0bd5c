// Package repomanager vends relay repository implementations bound to a
// DBTX and owns the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/accounts"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/settings"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/transfers"
)

type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Transfers(db dbx.DBTX) transfers.Repository
	Settings(db dbx.DBTX) settings.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
