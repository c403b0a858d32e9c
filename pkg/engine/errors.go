package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is a convenience value engines return when no route matches.
var ErrNotFound = &StatusError{Code: http.StatusNotFound}

// RedirectError asks the caller to redirect the client instead of rendering.
type RedirectError struct {
	URL string
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return "engine: redirect to " + e.URL
}

// StatusError carries an HTTP-like status code chosen by the application.
type StatusError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine: status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("engine: status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// RedirectURL returns the redirect target carried by err, if any.
func RedirectURL(err error) (string, bool) {
	var re *RedirectError
	if errors.As(err, &re) && re.URL != "" {
		return re.URL, true
	}
	return "", false
}

// StatusCode returns the status code carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
