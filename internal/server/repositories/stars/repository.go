package stars

import (
	"context"
	"time"
)

// Repository records which users starred which repositories. Add and Remove
// report whether the row actually changed so callers can keep counters exact.
type Repository interface {
	Add(ctx context.Context, userID, repoID string, at time.Time) (bool, error)
	Remove(ctx context.Context, userID, repoID string) (bool, error)
	Exists(ctx context.Context, userID, repoID string) (bool, error)
	ListStargazers(ctx context.Context, repoID string) ([]string, error)
}
