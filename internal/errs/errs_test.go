package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("import: %w", NewValidationError(map[string]string{"books[0].title": "is required"}))

	assert.True(t, errors.Is(err, ErrValidation))

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "is required", vErr.Fields["books[0].title"])
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := NewValidationError(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "validation failed: a: one; b: two", err.Error())
	assert.Equal(t, "validation failed", NewValidationError(nil).Error())
}

func TestStore(t *testing.T) {
	assert.NoError(t, Store("export", nil))

	cause := errors.New("connection refused")
	err := Store("export books", cause)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))

	// already wrapped errors are not wrapped twice
	assert.Equal(t, err, Store("outer", err))
}
