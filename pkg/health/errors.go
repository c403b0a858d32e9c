package health

import "errors"

// ErrCheckTimeout marks a check that was still running when the probe
// timeout expired.
var ErrCheckTimeout = errors.New("health: check timeout")
