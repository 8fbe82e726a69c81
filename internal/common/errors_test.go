package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	for _, target := range []error{ErrorNotFound, ErrorConflict, ErrorForbidden, ErrorValidation, ErrorUnauthorized} {
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", target))
		assert.True(t, errors.Is(wrapped, target), target.Error())
	}
	assert.False(t, errors.Is(ErrorNotFound, ErrorConflict))
}

func TestMaxFileSize(t *testing.T) {
	assert.Equal(t, int64(104857600), MaxFileSize)
}
