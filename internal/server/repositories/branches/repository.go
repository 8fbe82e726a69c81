package branches

import (
	"context"

	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, branch *models.Branch) error
	Get(ctx context.Context, repoID, branchID string) (*models.Branch, error)
	// GetForUpdate locks the branch row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, repoID, branchID string) (*models.Branch, error)
	ListByRepository(ctx context.Context, repoID string) ([]*models.Branch, error)
	SetLastCommit(ctx context.Context, branchID, commitID string) error
}
