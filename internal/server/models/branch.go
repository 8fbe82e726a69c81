package models

import "time"

// Branch is a named label inside a repository. Branches carry no ancestry;
// LastCommitID points at the newest commit made on the branch.
type Branch struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RepositoryID string    `json:"repositoryId"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	LastCommitID *string   `json:"lastCommitId,omitempty"`
}
