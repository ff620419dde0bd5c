// Package accounts persists loan-officer accounts on the relay side.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/relay/models"
)

const accountColumns = "employee_id, name, activation_key, status, device_id, device_info, activated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.EmployeeID, &a.Name, &a.ActivationKey, &a.Status,
		&a.DeviceID, &a.DeviceInfo, &a.ActivatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByActivationKey(ctx context.Context, key string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE activation_key = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, key))
}

func (r *PostgresRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE employee_id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, employeeID))
}

func (r *PostgresRepository) BindDevice(ctx context.Context, employeeID, deviceID, deviceInfo string, activatedAt int64) error {
	query :=
		`UPDATE accounts SET device_id = $2, device_info = $3, activated_at = $4
		 WHERE employee_id = $1`

	res, err := r.db.ExecContext(ctx, query, employeeID, deviceID, deviceInfo, activatedAt)
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

func (r *PostgresRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 ORDER BY employee_id`

	rows, err := r.db.QueryContext(ctx, query, models.AccountActive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		a := models.Account{}
		err := rows.Scan(&a.EmployeeID, &a.Name, &a.ActivationKey, &a.Status,
			&a.DeviceID, &a.DeviceInfo, &a.ActivatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
