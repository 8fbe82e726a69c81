package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
)

const defaultNotificationLimit = 50

// NotificationService reads stored notifications and opens live streams.
type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *notify.Hub
	log         logging.Logger
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager, hub *notify.Hub, log logging.Logger) *NotificationService {
	return &NotificationService{db: db, repomanager: m, hub: hub, log: log}
}

// List returns the newest notifications for userID; limit defaults to 50
// and is capped at 100.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	list, err := s.repomanager.Notifications(s.db).ListByRecipient(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, logFailure(ctx, s.log, "list notifications", err, "user_id", userID)
	}
	return list, nil
}

// MarkRead flags one of userID's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repomanager.Notifications(s.db).MarkRead(ctx, userID, id); err != nil {
		return logFailure(ctx, s.log, "mark notification read", err, "notification_id", id)
	}
	return nil
}

// Subscribe opens a live stream of userID's new notifications. The caller
// must Close the subscription.
func (s *NotificationService) Subscribe(ctx context.Context, userID string) (*notify.Subscription, error) {
	return s.hub.Subscribe(ctx, userID)
}
