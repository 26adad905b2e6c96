// File path: internal/sqlite/errors.go
package sqlite

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or inconsistent caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a caller-input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
