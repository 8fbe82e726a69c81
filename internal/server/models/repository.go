package models

import "time"

// Repository is a project owned by a user. OwnerUsername is a snapshot of
// the owner's username taken at write time.
type Repository struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	OwnerID       string    `json:"ownerId"`
	OwnerUsername string    `json:"ownerUsername"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	IsPrivate     bool      `json:"isPrivate"`
	Genre         *string   `json:"genre,omitempty"`
	BPM           *int      `json:"bpm,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VisibleTo reports whether userID may see the repository.
func (r *Repository) VisibleTo(userID string) bool {
	return !r.IsPrivate || r.OwnerID == userID
}
