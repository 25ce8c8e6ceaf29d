// Package errs contains the sentinel errors the core hands to the request layer.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks input that was rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNoActiveSession is returned when stopping a session that is not open.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotFound indicates the requested entity does not exist for the user.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps any storage failure. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnauthorized indicates a missing or unknown API token.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Store wraps a storage error so that it matches ErrStoreUnavailable while
// keeping the original cause for logging. Nil stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
