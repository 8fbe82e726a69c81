package branches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, branch *models.Branch) error {
	query :=
		`INSERT INTO branches (id, repository_id, name, is_default, created_at, last_commit_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		branch.ID, branch.RepositoryID, branch.Name, branch.IsDefault, branch.CreatedAt, branch.LastCommitID)
	if err != nil {
		switch {
		case dbx.IsForeignKeyViolation(err), dbx.IsInvalidTextRepresentation(err):
			return common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, repoID, branchID string) (*models.Branch, error) {
	query :=
		`SELECT id, repository_id, name, is_default, created_at, last_commit_id FROM branches
		 WHERE id = $1 AND repository_id = $2
		 `
	return r.get(ctx, query, branchID, repoID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, repoID, branchID string) (*models.Branch, error) {
	query :=
		`SELECT id, repository_id, name, is_default, created_at, last_commit_id FROM branches
		 WHERE id = $1 AND repository_id = $2
		 FOR UPDATE
		 `
	return r.get(ctx, query, branchID, repoID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (*models.Branch, error) {
	b := &models.Branch{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&b.ID, &b.RepositoryID, &b.Name, &b.IsDefault, &b.CreatedAt, &b.LastCommitID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

func (r *PostgresRepository) ListByRepository(ctx context.Context, repoID string) ([]*models.Branch, error) {
	query :=
		`SELECT id, repository_id, name, is_default, created_at, last_commit_id FROM branches
		 WHERE repository_id = $1
		 ORDER BY is_default DESC, created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, repoID)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select branches: %w", err)
	}
	defer rows.Close()

	result := []*models.Branch{}
	for rows.Next() {
		b := &models.Branch{}
		if err := rows.Scan(&b.ID, &b.RepositoryID, &b.Name, &b.IsDefault, &b.CreatedAt, &b.LastCommitID); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) SetLastCommit(ctx context.Context, branchID, commitID string) error {
	query := `UPDATE branches SET last_commit_id = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, branchID, commitID)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
