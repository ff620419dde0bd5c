// Package storage opens the local SQLite database, applies migrations and
// hands out the repository set.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/client/migrations"
	"github.com/clientpro-app/clientpro/internal/client/repositories/backups"
	"github.com/clientpro-app/clientpro/internal/client/repositories/customers"
	"github.com/clientpro-app/clientpro/internal/client/repositories/images"
	"github.com/clientpro-app/clientpro/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Customers customers.Repository
	Images    images.Repository
	Backups   backups.Repository
	Metadata  metadata.Repository
	DB        *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; also keeps :memory: databases on one connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Customers: customers.NewSQLiteRepository(db),
		Images:    images.NewSQLiteRepository(db),
		Backups:   backups.NewSQLiteRepository(db),
		Metadata:  metadata.NewSQLiteRepository(db),
		DB:        db,
	}, nil
}
