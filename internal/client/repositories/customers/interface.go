package customers

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/client/models"
)

// Repository describes CRUD and query operations for customer records.
// Implementations are typically backed by a local SQLite database; field
// values arrive and leave exactly as stored (the service layer owns the
// encryption boundary).
type Repository interface {
	// CreateOrUpdate inserts a new record or updates an existing one by ID.
	CreateOrUpdate(ctx context.Context, c *models.Customer) error

	// GetAll returns every record ordered by most recently updated.
	GetAll(ctx context.Context) ([]models.Customer, error)

	// GetByID returns one record by its identifier.
	GetByID(ctx context.Context, id string) (*models.Customer, error)

	// DeleteByID removes a record.
	DeleteByID(ctx context.Context, id string) error

	// DeleteAll wipes the collection (used by restore and by a confirmed
	// different-employee reactivation).
	DeleteAll(ctx context.Context) error

	// Count reports the number of records.
	Count(ctx context.Context) (int64, error)
}
