package customers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a record by id. Assets are stored as a JSON column.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, c *models.Customer) error {
	assets, err := json.Marshal(c.Assets)
	if err != nil {
		return fmt.Errorf("failed to encode assets: %w", err)
	}
	query := `INSERT INTO customers (id, name, phone, cccd, notes, status, credit_limit, assets, drive_link, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				phone = excluded.phone,
				cccd = excluded.cccd,
				notes = excluded.notes,
				status = excluded.status,
				credit_limit = excluded.credit_limit,
				assets = excluded.assets,
				drive_link = excluded.drive_link,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Phone, c.CCCD, c.Notes, c.Status, c.CreditLimit, string(assets), c.DriveLink, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func scanCustomer(scan func(dest ...any) error) (*models.Customer, error) {
	var c models.Customer
	var assets string
	if err := scan(&c.ID, &c.Name, &c.Phone, &c.CCCD, &c.Notes, &c.Status, &c.CreditLimit, &assets, &c.DriveLink, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if assets != "" {
		if err := json.Unmarshal([]byte(assets), &c.Assets); err != nil {
			return nil, fmt.Errorf("failed to decode assets: %w", err)
		}
	}
	return &c, nil
}

const customerColumns = `id, name, phone, cccd, notes, status, credit_limit, assets, drive_link, created_at, updated_at`

// GetAll lists all records, most recently updated first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select customers: %w", err)
	}
	defer rows.Close()

	var result []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single record or common.ErrorNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// DeleteByID removes a record. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
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

// DeleteAll wipes the collection.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("failed to clear customers: %w", err)
	}
	return nil
}

// Count reports the number of records.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
