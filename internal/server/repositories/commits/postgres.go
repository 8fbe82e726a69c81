package commits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

const selectColumns = `SELECT id, repository_id, branch_id, message, author_id, author_name, author_avatar, parent_commit_id, files, created_at
		 FROM commits`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCommit(s scanner) (*models.Commit, error) {
	c := &models.Commit{}
	var files []byte
	err := s.Scan(&c.ID, &c.RepositoryID, &c.BranchID, &c.Message, &c.AuthorID, &c.AuthorName,
		&c.AuthorAvatar, &c.ParentCommitID, &files, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(files, &c.Files); err != nil {
		return nil, fmt.Errorf("decode files of commit %s: %w", c.ID, err)
	}
	if c.Files == nil {
		c.Files = []models.CommitFile{}
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, commit *models.Commit) error {
	files := commit.Files
	if files == nil {
		files = []models.CommitFile{}
	}
	payload, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	query :=
		`INSERT INTO commits (id, repository_id, branch_id, message, author_id, author_name, author_avatar, parent_commit_id, files, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err = r.db.ExecContext(ctx, query,
		commit.ID, commit.RepositoryID, commit.BranchID, commit.Message, commit.AuthorID, commit.AuthorName,
		commit.AuthorAvatar, commit.ParentCommitID, payload, commit.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, repoID, commitID string) (*models.Commit, error) {
	query := selectColumns + `
		 WHERE id = $1 AND repository_id = $2
		 `

	c, err := scanCommit(r.db.QueryRowContext(ctx, query, commitID, repoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) ListByBranch(ctx context.Context, repoID, branchID string) ([]*models.Commit, error) {
	query := selectColumns + `
		 WHERE repository_id = $1 AND branch_id = $2
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, repoID, branchID)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select commits: %w", err)
	}
	defer rows.Close()

	result := []*models.Commit{}
	for rows.Next() {
		c, err := scanCommit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) RenameAuthor(ctx context.Context, authorID, name, avatar string) error {
	query := `UPDATE commits SET author_name = $2, author_avatar = $3 WHERE author_id = $1`
	if _, err := r.db.ExecContext(ctx, query, authorID, name, avatar); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
