// Package logger builds the structured loggers used across the module.
//
// Loggers are plain *slog.Logger values. New writes JSON to stdout; context
// extractors add request-scoped attributes such as the request id to every
// record, and an optional Sentry handler receives warnings and errors:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	    logger.WithSentry(logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")}),
//	)
//
// Without a DSN Sentry stays disabled, so the same code path works locally.
// Library packages accept a logger and fall back to NewNope when none is set.
package logger
