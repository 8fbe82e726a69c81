// Package services contains server-side business logic: repositories and
// branches, commits with their uploaded files, user profiles, stars and
// notifications. Services orchestrate the aggregate repositories vended by
// repomanager and run multi-step writes inside dbx.WithTx.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repos"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Publisher delivers committed notifications to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// visibleRepository loads a repository, reporting private ones as missing to
// everyone but their owner.
func visibleRepository(ctx context.Context, r repos.Repository, viewerID, id string) (*models.Repository, error) {
	repo, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !repo.VisibleTo(viewerID) {
		return nil, common.ErrorNotFound
	}
	return repo, nil
}

// ownedRepository is visibleRepository restricted to the owner.
func ownedRepository(ctx context.Context, r repos.Repository, userID, id string) (*models.Repository, error) {
	repo, err := visibleRepository(ctx, r, userID, id)
	if err != nil {
		return nil, err
	}
	if repo.OwnerID != userID {
		return nil, common.ErrorForbidden
	}
	return repo, nil
}

func isExpected(err error) bool {
	for _, target := range []error{
		common.ErrorNotFound, common.ErrorConflict, common.ErrorValidation,
		common.ErrorForbidden, common.ErrorUnauthorized,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// logFailure logs err unless it is one of the sentinel outcomes callers
// handle routinely, and returns it unchanged.
func logFailure(ctx context.Context, log logging.Logger, msg string, err error, args ...any) error {
	if err != nil && !isExpected(err) {
		log.Error(ctx, msg, append(args, "error", err)...)
	}
	return err
}

func publishAll(ctx context.Context, p Publisher, log logging.Logger, ns []*models.Notification) {
	if p == nil {
		return
	}
	for _, n := range ns {
		if err := p.Publish(ctx, n); err != nil {
			log.Warn(ctx, "notification not published", "notification_id", n.ID, "error", err)
		}
	}
}
