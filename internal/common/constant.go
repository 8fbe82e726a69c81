package common

// AccessTokenHeaderName is the HTTP header (and websocket query parameter)
// that may carry the access token instead of an Authorization header.
const AccessTokenHeaderName = "access_token"

// DefaultBranchName is the branch created together with every repository.
const DefaultBranchName = "main"

// MaxFileSize is the default per-file upload limit (100 MB).
const MaxFileSize int64 = 100 * 1024 * 1024
