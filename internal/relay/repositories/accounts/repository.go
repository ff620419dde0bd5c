package accounts

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/relay/models"
)

type Repository interface {
	GetByActivationKey(ctx context.Context, key string) (*models.Account, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*models.Account, error)
	BindDevice(ctx context.Context, employeeID, deviceID, deviceInfo string, activatedAt int64) error
	ListActive(ctx context.Context) ([]models.Account, error)
}
