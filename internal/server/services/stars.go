package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// StarService stars and unstars repositories, keeping the counter on the
// repository in step with the star rows.
type StarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	log         logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewStarService(db *sql.DB, m repomanager.RepositoryManager, p Publisher, log logging.Logger) *StarService {
	return &StarService{
		db:          db,
		repomanager: m,
		publisher:   p,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Star is idempotent. The first star by someone other than the owner
// notifies the owner.
func (s *StarService) Star(ctx context.Context, userID, repoID string) (*models.Repository, error) {
	repo, err := visibleRepository(ctx, s.repomanager.Repos(s.db), userID, repoID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}

	var note *models.Notification
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		added, err := s.repomanager.Stars(tx).Add(ctx, userID, repoID, now)
		if err != nil {
			return fmt.Errorf("add star: %w", err)
		}
		if !added {
			return nil
		}
		if err := s.repomanager.Repos(tx).AdjustStars(ctx, repoID, 1); err != nil {
			return fmt.Errorf("increment stars: %w", err)
		}
		if repo.OwnerID == userID {
			return nil
		}

		note = &models.Notification{
			ID:           s.newID(),
			ToUserID:     repo.OwnerID,
			FromUserID:   userID,
			Type:         models.NotificationStar,
			RepositoryID: repoID,
			Message:      fmt.Sprintf("%s starred %s", s.actorName(ctx, tx, userID), repo.Name),
			CreatedAt:    now,
		}
		if err := s.repomanager.Notifications(tx).Create(ctx, note); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(ctx, s.log, "star repository", err, "repository_id", repoID, "user_id", userID)
	}

	if note != nil {
		publishAll(ctx, s.publisher, s.log, []*models.Notification{note})
	}
	return s.reload(ctx, userID, repoID)
}

// Unstar is idempotent.
func (s *StarService) Unstar(ctx context.Context, userID, repoID string) (*models.Repository, error) {
	if _, err := visibleRepository(ctx, s.repomanager.Repos(s.db), userID, repoID); err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		removed, err := s.repomanager.Stars(tx).Remove(ctx, userID, repoID)
		if err != nil {
			return fmt.Errorf("remove star: %w", err)
		}
		if !removed {
			return nil
		}
		if err := s.repomanager.Repos(tx).AdjustStars(ctx, repoID, -1); err != nil {
			return fmt.Errorf("decrement stars: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(ctx, s.log, "unstar repository", err, "repository_id", repoID, "user_id", userID)
	}
	return s.reload(ctx, userID, repoID)
}

// Starred reports whether userID has starred repoID.
func (s *StarService) Starred(ctx context.Context, userID, repoID string) (bool, error) {
	ok, err := s.repomanager.Stars(s.db).Exists(ctx, userID, repoID)
	if err != nil {
		return false, logFailure(ctx, s.log, "check star", err, "repository_id", repoID)
	}
	return ok, nil
}

func (s *StarService) reload(ctx context.Context, userID, repoID string) (*models.Repository, error) {
	repo, err := visibleRepository(ctx, s.repomanager.Repos(s.db), userID, repoID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}
	return repo, nil
}

func (s *StarService) actorName(ctx context.Context, tx dbx.DBTX, userID string) string {
	u, err := s.repomanager.Users(tx).GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "star actor profile unavailable", "user_id", userID, "error", err)
		}
		return "Someone"
	}
	return u.Name()
}
