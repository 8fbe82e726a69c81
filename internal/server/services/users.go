package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// ProfileInput holds the editable profile fields. Email is only used when
// the profile is created.
type ProfileInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

func (in *ProfileInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	in.Email = strings.TrimSpace(in.Email)
	if !usernamePattern.MatchString(in.Username) {
		return fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", common.ErrorValidation)
	}
	return nil
}

// UserService manages profiles keyed by the identity subject.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, logFailure(ctx, s.log, "get profile", err, "user_id", userID)
	}
	return u, nil
}

// CreateProfile stores the first profile of userID; a second call conflicts.
func (s *UserService) CreateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	now := s.now()
	u := &models.User{
		ID:          userID,
		Email:       in.Email,
		Username:    in.Username,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repomanager.Users(s.db).Create(ctx, u); err != nil {
		return nil, logFailure(ctx, s.log, "create profile", err, "user_id", userID)
	}
	return u, nil
}

// UpdateProfile replaces the editable fields and, in the same transaction,
// refreshes the copies of the username and author name kept on
// repositories and commits.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}
		u.Username = in.Username
		u.DisplayName = in.DisplayName
		u.Bio = in.Bio
		u.AvatarURL = in.AvatarURL
		u.UpdatedAt = s.now()

		if err := s.repomanager.Users(tx).Update(ctx, u); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if err := s.repomanager.Repos(tx).RenameOwner(ctx, userID, u.Username); err != nil {
			return fmt.Errorf("refresh repository owners: %w", err)
		}
		if err := s.repomanager.Commits(tx).RenameAuthor(ctx, userID, u.Name(), u.AvatarURL); err != nil {
			return fmt.Errorf("refresh commit authors: %w", err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, logFailure(ctx, s.log, "update profile", err, "user_id", userID)
	}
	return updated, nil
}
