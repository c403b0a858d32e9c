package internal

import (
	"errors"
)

var (
	// ErrMissingDependency is returned by New in development mode when no
	// builder is configured.
	ErrMissingDependency = errors.New("ssr: development mode requires a builder")

	// ErrEngine wraps failures of the engine factory.
	ErrEngine = errors.New("ssr: engine failed to create renderer")

	// ErrNoRenderer is reported when a build succeeded without producing
	// a renderer.
	ErrNoRenderer = errors.New("ssr: no renderer available")

	// ErrInvalidSchedule is returned by New for a malformed reload schedule.
	ErrInvalidSchedule = errors.New("ssr: invalid reload schedule")

	// ErrBuildCancelled is returned to held requests when the middleware
	// shuts down before the first development build finished.
	ErrBuildCancelled = errors.New("ssr: development build cancelled")
)

// BuildError reports a failed development build.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return "ssr: development build failed: " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// RenderError reports a failed render of a single request.
// Redirect is set when the engine asked for a redirect instead.
type RenderError struct {
	Err      error
	URL      string
	Redirect string
}

func (e *RenderError) Error() string {
	if e.Redirect != "" {
		return "ssr: render of " + e.URL + " redirected to " + e.Redirect
	}
	return "ssr: render of " + e.URL + " failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsBuildError reports whether err is or wraps a BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// AsBuildError extracts the BuildError from err if present.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsRenderError reports whether err is or wraps a RenderError.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// AsRenderError extracts the RenderError from err if present.
func AsRenderError(err error) (*RenderError, bool) {
	var re *RenderError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
