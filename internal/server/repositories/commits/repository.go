package commits

import (
	"context"

	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, commit *models.Commit) error
	GetByID(ctx context.Context, repoID, commitID string) (*models.Commit, error)
	ListByBranch(ctx context.Context, repoID, branchID string) ([]*models.Commit, error)
	// RenameAuthor refreshes the author snapshot on every commit by authorID.
	RenameAuthor(ctx context.Context, authorID, name, avatar string) error
}
