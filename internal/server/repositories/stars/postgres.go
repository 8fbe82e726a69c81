package stars

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID, repoID string, at time.Time) (bool, error) {
	query :=
		`INSERT INTO stars (user_id, repository_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, repository_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, userID, repoID, at)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidTextRepresentation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return changed(res.RowsAffected())
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, repoID string) (bool, error) {
	query := `DELETE FROM stars WHERE user_id = $1 AND repository_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, repoID)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return changed(res.RowsAffected())
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, repoID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM stars WHERE user_id = $1 AND repository_id = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, repoID).Scan(&ok); err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ListStargazers(ctx context.Context, repoID string) ([]string, error) {
	query := `SELECT user_id FROM stars WHERE repository_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, repoID)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select stargazers: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func changed(n int64, err error) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}
