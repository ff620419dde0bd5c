package backups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, b *models.BackupRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO backups (id, filename, created_at, size, device_id, hash, encrypted, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Filename, b.CreatedAt, b.Size, b.DeviceID, b.Hash, b.Encrypted, b.Kind)
	if err != nil {
		return fmt.Errorf("failed to insert backup: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.BackupRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, created_at, size, device_id, hash, kind FROM backups ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select backups: %w", err)
	}
	defer rows.Close()

	var result []models.BackupRecord
	for rows.Next() {
		var b models.BackupRecord
		if err := rows.Scan(&b.ID, &b.Filename, &b.CreatedAt, &b.Size, &b.DeviceID, &b.Hash, &b.Kind); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.BackupRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, created_at, size, device_id, hash, encrypted, kind FROM backups WHERE id = ?`, id)

	var b models.BackupRecord
	err := row.Scan(&b.ID, &b.Filename, &b.CreatedAt, &b.Size, &b.DeviceID, &b.Hash, &b.Encrypted, &b.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backup: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) LatestHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT hash FROM backups WHERE kind = ? ORDER BY created_at DESC LIMIT 1`, models.BackupKindFull).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest backup hash: %w", err)
	}
	return hash, nil
}
