package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing marks an artifact that does not exist in the source.
	ErrMissing = errors.New("artifact: missing")

	// ErrMalformed marks an artifact that is not valid JSON.
	ErrMalformed = errors.New("artifact: malformed")

	// ErrInvalidS3Config is returned by NewS3 when required fields are empty.
	ErrInvalidS3Config = errors.New("artifact: invalid S3 configuration")
)

// Error describes a build input that could not be loaded.
type Error struct {
	Err  error
	Name string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is an artifact Error.
func IsError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
