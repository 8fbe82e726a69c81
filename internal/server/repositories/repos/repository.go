// Package repos stores ProdHub project repositories.
package repos

import (
	"context"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, repo *models.Repository) error
	GetByID(ctx context.Context, id string) (*models.Repository, error)
	ListPublic(ctx context.Context, limit int) ([]*models.Repository, error)
	ListByOwner(ctx context.Context, ownerID string, includePrivate bool) ([]*models.Repository, error)

	// Touch moves updated_at forward after a commit lands.
	Touch(ctx context.Context, id string, at time.Time) error
	AdjustStars(ctx context.Context, id string, delta int) error
	RenameOwner(ctx context.Context, ownerID, username string) error
}
