package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

const selectColumns = `SELECT id, name, description, owner_id, owner_username, stars, forks, is_private, genre, bpm, created_at, updated_at
		 FROM repositories`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(s scanner) (*models.Repository, error) {
	item := &models.Repository{}
	err := s.Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.OwnerUsername,
		&item.Stars, &item.Forks, &item.IsPrivate, &item.Genre, &item.BPM, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, repo *models.Repository) error {
	query :=
		`INSERT INTO repositories (id, name, description, owner_id, owner_username, stars, forks, is_private, genre, bpm, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		repo.ID, repo.Name, repo.Description, repo.OwnerID, repo.OwnerUsername,
		repo.Stars, repo.Forks, repo.IsPrivate, repo.Genre, repo.BPM, repo.CreatedAt, repo.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	query := selectColumns + `
		 WHERE id = $1
		 `

	item, err := scanRepository(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) ListPublic(ctx context.Context, limit int) ([]*models.Repository, error) {
	query := selectColumns + `
		 WHERE NOT is_private
		 ORDER BY created_at DESC
		 LIMIT $1
		 `
	return r.list(ctx, query, limit)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, includePrivate bool) ([]*models.Repository, error) {
	query := selectColumns + `
		 WHERE owner_id = $1 AND (NOT is_private OR $2)
		 ORDER BY created_at DESC
		 `
	return r.list(ctx, query, ownerID, includePrivate)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Repository, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select repositories: %w", err)
	}
	defer rows.Close()

	result := []*models.Repository{}
	for rows.Next() {
		item, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE repositories SET updated_at = $2 WHERE id = $1`
	return r.updateOne(ctx, query, id, at)
}

func (r *PostgresRepository) AdjustStars(ctx context.Context, id string, delta int) error {
	query := `UPDATE repositories SET stars = GREATEST(stars + $2, 0) WHERE id = $1`
	return r.updateOne(ctx, query, id, delta)
}

func (r *PostgresRepository) RenameOwner(ctx context.Context, ownerID, username string) error {
	query := `UPDATE repositories SET owner_username = $2 WHERE owner_id = $1`
	if _, err := r.db.ExecContext(ctx, query, ownerID, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
