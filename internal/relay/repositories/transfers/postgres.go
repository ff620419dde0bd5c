// Package transfers persists pending inbox transfers on the relay side.
// Recipient scoping is enforced in SQL: a transfer is only visible to the
// account it was addressed to, and only until it expires.
package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/relay/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) error {
	query :=
		`INSERT INTO transfers
		 (transfer_id, from_employee_id, device_id, to_employee_id, filename, cipher, size, hash, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		t.TransferID, t.FromEmployeeID, t.DeviceID, t.ToEmployeeID,
		t.Filename, t.Cipher, t.Size, t.Hash, t.CreatedAt, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForRecipient returns live transfers addressed to employeeID, newest
// first, without cipher bodies. The sender's display name is joined in.
func (r *PostgresRepository) ListForRecipient(ctx context.Context, employeeID string, now int64) ([]models.Transfer, error) {
	query :=
		`SELECT t.transfer_id, t.from_employee_id, a.name, t.filename, t.size, t.hash, t.created_at, t.expires_at
		 FROM transfers t
		 JOIN accounts a ON a.employee_id = t.from_employee_id
		 WHERE t.to_employee_id = $1 AND t.expires_at > $2
		 ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, employeeID, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Transfer
	for rows.Next() {
		t := models.Transfer{ToEmployeeID: employeeID}
		err := rows.Scan(&t.TransferID, &t.FromEmployeeID, &t.FromName,
			&t.Filename, &t.Size, &t.Hash, &t.CreatedAt, &t.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetForRecipient returns one live transfer with its cipher body, but only
// to the account it was addressed to.
func (r *PostgresRepository) GetForRecipient(ctx context.Context, transferID, employeeID string, now int64) (*models.Transfer, error) {
	query :=
		`SELECT transfer_id, from_employee_id, to_employee_id, filename, cipher, size, hash, created_at, expires_at
		 FROM transfers
		 WHERE transfer_id = $1 AND to_employee_id = $2 AND expires_at > $3`

	t := &models.Transfer{}
	err := r.db.QueryRowContext(ctx, query, transferID, employeeID, now).
		Scan(&t.TransferID, &t.FromEmployeeID, &t.ToEmployeeID,
			&t.Filename, &t.Cipher, &t.Size, &t.Hash, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) DeleteForRecipient(ctx context.Context, transferID, employeeID string) error {
	query := `DELETE FROM transfers WHERE transfer_id = $1 AND to_employee_id = $2`

	res, err := r.db.ExecContext(ctx, query, transferID, employeeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// PurgeExpired drops transfers past their TTL and reports how many went.
func (r *PostgresRepository) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transfers WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return ra, nil
}
