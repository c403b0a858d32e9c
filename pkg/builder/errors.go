package builder

import "errors"

var (
	// ErrConfig is returned when the builder configuration cannot be read.
	ErrConfig = errors.New("builder: invalid config")

	// ErrTimeout is returned when the artifacts did not appear in time.
	ErrTimeout = errors.New("builder: timed out waiting for artifacts")

	// ErrCommandExited is returned when the build command stops before the
	// first build completed.
	ErrCommandExited = errors.New("builder: build command exited")

	// ErrWatch is returned when the output directory cannot be watched.
	ErrWatch = errors.New("builder: cannot watch output directory")
)
