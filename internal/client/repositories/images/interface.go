package images

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/client/models"
)

// Repository stores customer photos.
type Repository interface {
	Create(ctx context.Context, img *models.Image) error
	CreateOrUpdate(ctx context.Context, img *models.Image) error
	GetByCustomer(ctx context.Context, customerID string) ([]models.Image, error)
	DeleteByCustomer(ctx context.Context, customerID string) error
	DeleteAll(ctx context.Context) error
}
