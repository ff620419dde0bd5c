package transfers

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/relay/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transfer) error
	ListForRecipient(ctx context.Context, employeeID string, now int64) ([]models.Transfer, error)
	GetForRecipient(ctx context.Context, transferID, employeeID string, now int64) (*models.Transfer, error)
	DeleteForRecipient(ctx context.Context, transferID, employeeID string) error
	PurgeExpired(ctx context.Context, now int64) (int64, error)
}
