package images

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, img *models.Image) error {
	var assetID sql.NullString
	if img.AssetID != "" {
		assetID = sql.NullString{String: img.AssetID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO images (id, customer_id, asset_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		img.ID, img.CustomerID, assetID, img.Data, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts an image by id. Restores use it so an already
// present photo is refreshed rather than duplicated.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, img *models.Image) error {
	var assetID sql.NullString
	if img.AssetID != "" {
		assetID = sql.NullString{String: img.AssetID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO images (id, customer_id, asset_id, data, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET customer_id = excluded.customer_id,
			asset_id = excluded.asset_id,
			data = excluded.data`,
		img.ID, img.CustomerID, assetID, img.Data, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert image: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByCustomer(ctx context.Context, customerID string) ([]models.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, asset_id, data, created_at FROM images WHERE customer_id = ? ORDER BY created_at`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select images: %w", err)
	}
	defer rows.Close()

	var result []models.Image
	for rows.Next() {
		var img models.Image
		var assetID sql.NullString
		if err := rows.Scan(&img.ID, &img.CustomerID, &assetID, &img.Data, &img.CreatedAt); err != nil {
			return nil, err
		}
		img.AssetID = assetID.String
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE customer_id = ?`, customerID); err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM images`); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	return nil
}
