package models

import (
	"path"
	"strings"
	"time"
)

// FileType is the coarse tag stored for every committed file.
type FileType string

const (
	FileTypeFLP   FileType = "flp"
	FileTypeWAV   FileType = "wav"
	FileTypeMP3   FileType = "mp3"
	FileTypeOther FileType = "other"
)

// FileTypeOf derives the tag from a file name extension.
func FileTypeOf(name string) FileType {
	switch strings.ToLower(path.Ext(name)) {
	case ".flp":
		return FileTypeFLP
	case ".wav":
		return FileTypeWAV
	case ".mp3":
		return FileTypeMP3
	default:
		return FileTypeOther
	}
}

// CommitFile describes one whole-file upload attached to a commit.
type CommitFile struct {
	Name string   `json:"name"`
	Type FileType `json:"type"`
	Path string   `json:"path"`
	Size int64    `json:"size"`
	URL  string   `json:"url"`
}

// Commit is a batch of uploaded files on a branch. Author fields are
// snapshots of the author's profile at write time.
type Commit struct {
	ID             string       `json:"id"`
	Message        string       `json:"message"`
	AuthorID       string       `json:"authorId"`
	AuthorName     string       `json:"authorName"`
	AuthorAvatar   string       `json:"authorAvatar"`
	BranchID       string       `json:"branchId"`
	RepositoryID   string       `json:"repositoryId"`
	ParentCommitID *string      `json:"parentCommitId,omitempty"`
	Files          []CommitFile `json:"files"`
	CreatedAt      time.Time    `json:"createdAt"`
}
