package notifications

import (
	"context"

	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
