package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxBPM = 999

// CreateRepositoryInput carries the user-editable fields of a new repository.
type CreateRepositoryInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsPrivate   bool    `json:"isPrivate"`
	Genre       *string `json:"genre,omitempty"`
	BPM         *int    `json:"bpm,omitempty"`
}

// RepositoryService lists, reads and creates repositories and their branches.
type RepositoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewRepositoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *RepositoryService {
	return &RepositoryService{
		db:          db,
		repomanager: m,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// ListPublic returns the newest public repositories. limit defaults to 10 and
// is capped at 100.
func (s *RepositoryService) ListPublic(ctx context.Context, limit int) ([]*models.Repository, error) {
	list, err := s.repomanager.Repos(s.db).ListPublic(ctx, clampLimit(limit))
	if err != nil {
		return nil, logFailure(ctx, s.log, "list public repositories", err)
	}
	return list, nil
}

// ListByOwner returns ownerID's repositories, newest first. Private ones are
// included only when viewerID is the owner.
func (s *RepositoryService) ListByOwner(ctx context.Context, viewerID, ownerID string) ([]*models.Repository, error) {
	list, err := s.repomanager.Repos(s.db).ListByOwner(ctx, ownerID, viewerID != "" && viewerID == ownerID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "list repositories by owner", err, "owner_id", ownerID)
	}
	return list, nil
}

// Get returns the repository or common.ErrorNotFound.
func (s *RepositoryService) Get(ctx context.Context, viewerID, id string) (*models.Repository, error) {
	repo, err := visibleRepository(ctx, s.repomanager.Repos(s.db), viewerID, id)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", id)
	}
	return repo, nil
}

// Create stores a repository together with its default branch in one
// transaction. The owner must have a profile; its username is copied onto
// the repository.
func (s *RepositoryService) Create(ctx context.Context, ownerID string, in CreateRepositoryInput) (*models.Repository, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: repository name is required", common.ErrorValidation)
	}
	if in.BPM != nil && (*in.BPM <= 0 || *in.BPM > maxBPM) {
		return nil, fmt.Errorf("%w: bpm must be between 1 and %d", common.ErrorValidation, maxBPM)
	}
	if in.Genre != nil && strings.TrimSpace(*in.Genre) == "" {
		in.Genre = nil
	}

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: create a profile before creating repositories", common.ErrorValidation)
		}
		return nil, logFailure(ctx, s.log, "load repository owner", err, "user_id", ownerID)
	}

	now := s.now()
	repo := &models.Repository{
		ID:            s.newID(),
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		OwnerID:       ownerID,
		OwnerUsername: owner.Username,
		IsPrivate:     in.IsPrivate,
		Genre:         in.Genre,
		BPM:           in.BPM,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	branch := &models.Branch{
		ID:           s.newID(),
		Name:         common.DefaultBranchName,
		RepositoryID: repo.ID,
		IsDefault:    true,
		CreatedAt:    now,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Repos(tx).Create(ctx, repo); err != nil {
			return fmt.Errorf("create repository: %w", err)
		}
		if err := s.repomanager.Branches(tx).Create(ctx, branch); err != nil {
			return fmt.Errorf("create default branch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(ctx, s.log, "create repository", err, "owner_id", ownerID)
	}

	s.log.Info(ctx, "repository created", "repository_id", repo.ID, "owner_id", ownerID, "private", repo.IsPrivate)
	return repo, nil
}

// ListBranches returns the default branch first, then the rest by creation.
func (s *RepositoryService) ListBranches(ctx context.Context, viewerID, repoID string) ([]*models.Branch, error) {
	if _, err := visibleRepository(ctx, s.repomanager.Repos(s.db), viewerID, repoID); err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}
	list, err := s.repomanager.Branches(s.db).ListByRepository(ctx, repoID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "list branches", err, "repository_id", repoID)
	}
	return list, nil
}

// CreateBranch adds a non-default branch. Only the owner may create
// branches; names are unique within a repository.
func (s *RepositoryService) CreateBranch(ctx context.Context, userID, repoID, name string) (*models.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return nil, fmt.Errorf("%w: invalid branch name %q", common.ErrorValidation, name)
	}

	if _, err := ownedRepository(ctx, s.repomanager.Repos(s.db), userID, repoID); err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}

	b := &models.Branch{
		ID:           s.newID(),
		Name:         name,
		RepositoryID: repoID,
		CreatedAt:    s.now(),
	}
	if err := s.repomanager.Branches(s.db).Create(ctx, b); err != nil {
		return nil, logFailure(ctx, s.log, "create branch", err, "repository_id", repoID)
	}
	return b, nil
}
