package models

import "time"

type NotificationType string

const (
	NotificationStar   NotificationType = "star"
	NotificationCommit NotificationType = "commit"
)

// Notification is addressed to ToUserID and pushed live to open streams.
type Notification struct {
	ID           string           `json:"id"`
	ToUserID     string           `json:"toUserId"`
	FromUserID   string           `json:"fromUserId"`
	Type         NotificationType `json:"type"`
	RepositoryID string           `json:"repositoryId"`
	Message      string           `json:"message"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"createdAt"`
}
