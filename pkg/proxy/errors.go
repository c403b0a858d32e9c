package proxy

import "errors"

var (
	// ErrInvalidTarget is returned when a rule target is not an absolute URL.
	ErrInvalidTarget = errors.New("proxy: invalid target")

	// ErrInvalidBypass is returned when a bypass replacement is not a valid URL.
	ErrInvalidBypass = errors.New("proxy: invalid bypass url")

	// ErrInvalidRewrite is returned when a path rewrite pattern does not compile.
	ErrInvalidRewrite = errors.New("proxy: invalid path rewrite")

	// ErrUpstream wraps failures talking to the target.
	ErrUpstream = errors.New("proxy: upstream request failed")
)
