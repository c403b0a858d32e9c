package logger

import "log/slog"

// NewNope creates a logger that discards everything.
// Library code uses it when no logger was injected.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
