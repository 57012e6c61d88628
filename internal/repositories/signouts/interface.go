package signouts

import (
	"context"

	"github.com/dmitrijs2005/signout/internal/models"
)

// Repository describes CRUD operations for sign-out entries. Lookups of an
// unknown ID return common.ErrorNotFound.
type Repository interface {
	// Create assigns the next ID and CreatedAt and stores the entry. The
	// argument is not modified; the stored entry is returned.
	Create(ctx context.Context, s *models.SignOut) (*models.SignOut, error)

	// Update replaces the entry with the same ID. CreatedAt is kept.
	Update(ctx context.Context, s *models.SignOut) error

	// Delete removes the entry and returns it.
	Delete(ctx context.Context, id string) (*models.SignOut, error)

	// GetByID returns a single entry.
	GetByID(ctx context.Context, id string) (*models.SignOut, error)

	// GetAll returns every entry in creation order.
	GetAll(ctx context.Context) ([]models.SignOut, error)
}
