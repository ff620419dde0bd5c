package backups

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/client/models"
)

// Repository stores local backup records (sealed envelopes plus listing
// metadata).
type Repository interface {
	Create(ctx context.Context, b *models.BackupRecord) error

	// GetAll lists records newest first, without envelope bodies.
	GetAll(ctx context.Context) ([]models.BackupRecord, error)

	// GetByID returns a full record including the envelope body.
	GetByID(ctx context.Context, id string) (*models.BackupRecord, error)

	DeleteByID(ctx context.Context, id string) error

	// LatestHash returns the payload hash of the newest record, or "" when
	// none exist.
	LatestHash(ctx context.Context) (string, error)
}
