package api

// CreateRepositoryInput is the body of POST /api/repositories.
type CreateRepositoryInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsPrivate   bool    `json:"isPrivate"`
	Genre       *string `json:"genre,omitempty"`
	BPM         *int    `json:"bpm,omitempty"`
}

// ProfileInput is the body of POST and PUT /api/users/me.
type ProfileInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}
