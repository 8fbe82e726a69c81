package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/config"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/google/uuid"
)

// CreateCommitInput is a commit message plus the files it adds.
type CreateCommitInput struct {
	Message string
	Files   []transfer.File
}

// CommitService creates and lists commits. File bodies go to the blob store
// through transfer.Uploader; only descriptors are kept in the database.
type CommitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    *transfer.Uploader
	publisher   Publisher
	log         logging.Logger
	maxFileSize int64
	now         func() time.Time
	newID       func() string
}

func NewCommitService(db *sql.DB, m repomanager.RepositoryManager, uploader *transfer.Uploader, p Publisher, cfg *config.Config, log logging.Logger) *CommitService {
	return &CommitService{
		db:          db,
		repomanager: m,
		uploader:    uploader,
		publisher:   p,
		log:         log,
		maxFileSize: cfg.MaxFileSize,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// ListCommits returns a branch's commits, newest first, with download URLs
// refreshed from the blob store.
func (s *CommitService) ListCommits(ctx context.Context, viewerID, repoID, branchID string) ([]*models.Commit, error) {
	if _, err := visibleRepository(ctx, s.repomanager.Repos(s.db), viewerID, repoID); err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}
	if _, err := s.repomanager.Branches(s.db).Get(ctx, repoID, branchID); err != nil {
		return nil, logFailure(ctx, s.log, "get branch", err, "branch_id", branchID)
	}

	list, err := s.repomanager.Commits(s.db).ListByBranch(ctx, repoID, branchID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "list commits", err, "repository_id", repoID, "branch_id", branchID)
	}
	for _, c := range list {
		s.refreshURLs(ctx, c)
	}
	return list, nil
}

// GetCommit returns one commit of a visible repository.
func (s *CommitService) GetCommit(ctx context.Context, viewerID, repoID, commitID string) (*models.Commit, error) {
	if _, err := visibleRepository(ctx, s.repomanager.Repos(s.db), viewerID, repoID); err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}
	c, err := s.repomanager.Commits(s.db).GetByID(ctx, repoID, commitID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get commit", err, "commit_id", commitID)
	}
	s.refreshURLs(ctx, c)
	return c, nil
}

// refreshURLs replaces stored URLs, which may have expired, with fresh ones.
// A file whose URL cannot be refreshed keeps the stored one.
func (s *CommitService) refreshURLs(ctx context.Context, c *models.Commit) {
	for i := range c.Files {
		u, err := s.uploader.URL(ctx, c.Files[i].Path)
		if err != nil {
			s.log.Warn(ctx, "file url not refreshed", "path", c.Files[i].Path, "error", err)
			continue
		}
		c.Files[i].URL = u
	}
}

// CreateCommit validates every file, uploads them in order, then records the
// commit atomically: the branch row is locked, the commit is linked to the
// branch's previous head, the head moves and the repository is touched. If
// an upload or the transaction fails, blobs already stored are deleted.
func (s *CommitService) CreateCommit(ctx context.Context, userID, repoID, branchID string, in CreateCommitInput, onProgress transfer.PercentFunc) (*models.Commit, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: commit message is required", common.ErrorValidation)
	}
	if len(in.Files) == 0 {
		return nil, fmt.Errorf("%w: a commit needs at least one file", common.ErrorValidation)
	}
	for _, f := range in.Files {
		if err := transfer.ValidateFile(displayName(f), f.Size, f.ContentType, s.maxFileSize); err != nil {
			return nil, err
		}
	}

	repo, err := ownedRepository(ctx, s.repomanager.Repos(s.db), userID, repoID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get repository", err, "repository_id", repoID)
	}
	if _, err := s.repomanager.Branches(s.db).Get(ctx, repoID, branchID); err != nil {
		return nil, logFailure(ctx, s.log, "get branch", err, "branch_id", branchID)
	}
	author, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: create a profile before committing", common.ErrorValidation)
		}
		return nil, logFailure(ctx, s.log, "load commit author", err, "user_id", userID)
	}

	stored, err := s.uploader.UploadMultiple(ctx, transfer.RepositoryFiles(repoID, branchID), in.Files, onProgress)
	if err != nil {
		s.discard(ctx, stored)
		return nil, logFailure(ctx, s.log, "upload commit files", err, "repository_id", repoID, "branch_id", branchID)
	}

	files := make([]models.CommitFile, 0, len(stored))
	for _, sf := range stored {
		files = append(files, models.CommitFile{
			Name: sf.Name,
			Type: models.FileTypeOf(sf.Name),
			Path: sf.Path,
			Size: sf.Size,
			URL:  sf.URL,
		})
	}

	now := s.now()
	commit := &models.Commit{
		ID:           s.newID(),
		Message:      message,
		AuthorID:     userID,
		AuthorName:   author.Name(),
		AuthorAvatar: author.AvatarURL,
		BranchID:     branchID,
		RepositoryID: repoID,
		Files:        files,
		CreatedAt:    now,
	}

	var notes []*models.Notification
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		branch, err := s.repomanager.Branches(tx).GetForUpdate(ctx, repoID, branchID)
		if err != nil {
			return fmt.Errorf("lock branch: %w", err)
		}
		commit.ParentCommitID = branch.LastCommitID

		if err := s.repomanager.Commits(tx).Create(ctx, commit); err != nil {
			return fmt.Errorf("insert commit: %w", err)
		}
		if err := s.repomanager.Branches(tx).SetLastCommit(ctx, branchID, commit.ID); err != nil {
			return fmt.Errorf("move branch head: %w", err)
		}
		if err := s.repomanager.Repos(tx).Touch(ctx, repoID, now); err != nil {
			return fmt.Errorf("touch repository: %w", err)
		}

		notes, err = s.notifyStargazers(ctx, tx, repo, author, commit)
		return err
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, logFailure(ctx, s.log, "record commit", err, "repository_id", repoID, "branch_id", branchID)
	}

	publishAll(ctx, s.publisher, s.log, notes)
	s.log.Info(ctx, "commit created", "repository_id", repoID, "branch_id", branchID, "commit_id", commit.ID, "files", len(files))
	return commit, nil
}

func (s *CommitService) notifyStargazers(ctx context.Context, tx dbx.DBTX, repo *models.Repository, author *models.User, c *models.Commit) ([]*models.Notification, error) {
	gazers, err := s.repomanager.Stars(tx).ListStargazers(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("list stargazers: %w", err)
	}

	var notes []*models.Notification
	for _, uid := range gazers {
		if uid == author.ID {
			continue
		}
		n := &models.Notification{
			ID:           s.newID(),
			ToUserID:     uid,
			FromUserID:   author.ID,
			Type:         models.NotificationCommit,
			RepositoryID: repo.ID,
			Message:      fmt.Sprintf("%s pushed %q to %s/%s", author.Name(), c.Message, repo.OwnerUsername, repo.Name),
			CreatedAt:    c.CreatedAt,
		}
		if err := s.repomanager.Notifications(tx).Create(ctx, n); err != nil {
			return nil, fmt.Errorf("create notification: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// discard removes uploaded blobs that ended up without a commit.
func (s *CommitService) discard(ctx context.Context, stored []transfer.StorageFile) {
	// The request context may already be canceled; cleanup must still run.
	ctx = context.WithoutCancel(ctx)
	for _, sf := range stored {
		if err := s.uploader.Delete(ctx, sf.Path); err != nil {
			s.log.Error(ctx, "orphaned blob not deleted", "path", sf.Path, "error", err)
		}
	}
}

func displayName(f transfer.File) string {
	if f.Name != "" {
		return f.Name
	}
	return path.Base(f.RelativePath)
}
