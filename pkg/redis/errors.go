package redis

import "errors"

var (
	ErrNoURL       = errors.New("redis: cache URL is empty")
	ErrInvalidURL  = errors.New("redis: invalid cache URL")
	ErrUnreachable = errors.New("redis: cache server unreachable")
	ErrUnhealthy   = errors.New("redis: cache server unhealthy")
)
