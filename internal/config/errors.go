package config

import (
	"fmt"

	"github.com/bft-labs/propship/internal/domain"
)

// Error reports an invalid or incomplete configuration. It matches
// domain.ErrInvalidConfig with errors.Is.
type Error struct {
	// Key is the dotted configuration key, empty when the problem is not
	// tied to one key.
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{domain.ErrInvalidConfig, e.Err}
}

func keyError(key string, format string, args ...any) error {
	return &Error{Key: key, Err: fmt.Errorf(format, args...)}
}
