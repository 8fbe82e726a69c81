package transfer

import "fmt"

// PublicAssets is the prefix for objects anyone may read.
const PublicAssets = "public"

// RepositoryFiles is where commits on a branch keep their files.
func RepositoryFiles(repoID, branchID string) string {
	return fmt.Sprintf("repositories/%s/branches/%s", repoID, branchID)
}

func UserProfile(userID string) string {
	return fmt.Sprintf("users/%s/profile", userID)
}

func UserUploads(userID string) string {
	return fmt.Sprintf("uploads/%s", userID)
}
