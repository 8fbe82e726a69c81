package transfer

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/prodhub/internal/common"
)

var allowedTypePrefixes = []string{
	"image/",
	"video/",
	"audio/",
	"text/",
	"application/pdf",
	"application/json",
	"application/javascript",
	"application/zip",
	"application/octet-stream",
}

// ValidateFile checks a file against the upload limit and the content type
// allow list. FL Studio project (.flp) and preset (.fst) files often arrive
// without a MIME type and are accepted as is. A non-positive limit means
// common.MaxFileSize.
func ValidateFile(name string, size int64, contentType string, limit int64) error {
	if limit <= 0 {
		limit = common.MaxFileSize
	}
	if size > limit {
		return fmt.Errorf("%w: file %q exceeds the %dMB limit", common.ErrorValidation, name, limit/(1024*1024))
	}

	for _, prefix := range allowedTypePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return nil
		}
	}

	if contentType == "" && (strings.HasSuffix(name, ".flp") || strings.HasSuffix(name, ".fst")) {
		return nil
	}

	return fmt.Errorf("%w: file %q has disallowed type %q", common.ErrorValidation, name, contentType)
}
