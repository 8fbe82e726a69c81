package notifications

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) error {
	query :=
		`INSERT INTO notifications (id, to_user_id, from_user_id, type, repository_id, message, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.ToUserID, n.FromUserID, string(n.Type), n.RepositoryID, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	query :=
		`SELECT id, to_user_id, from_user_id, type, repository_id, message, read, created_at FROM notifications
		 WHERE to_user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	result := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		var typ string
		if err := rows.Scan(&n.ID, &n.ToUserID, &n.FromUserID, &typ, &n.RepositoryID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(typ)
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, id string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND to_user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
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
