package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config is the environment-driven logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// Option configures New.
type Option func(*options)

type options struct {
	out        io.Writer
	sentry     *SentryConfig
	extractors []ContextExtractor
	level      slog.Level
	text       bool
}

// WithLevel sets the minimum level written to the output.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput sets the log destination. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithText switches from JSON to the human readable text format.
func WithText() Option {
	return func(o *options) {
		o.text = true
	}
}

// WithExtractors adds context extractors applied to every record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithSentry also sends warnings and errors to Sentry.
// An empty DSN leaves Sentry disabled.
func WithSentry(cfg SentryConfig) Option {
	return func(o *options) {
		o.sentry = &cfg
	}
}

// New creates a structured logger. JSON to stdout at info level by default.
func New(opts ...Option) *slog.Logger {
	o := &options{out: os.Stdout, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler
	if o.text {
		h = slog.NewTextHandler(o.out, hopts)
	} else {
		h = slog.NewJSONHandler(o.out, hopts)
	}

	if o.sentry != nil {
		h = withSentry(h, *o.sentry)
	}

	return slog.New(NewLogHandlerDecorator(h, o.extractors...))
}

// FromConfig creates a logger from environment configuration.
func FromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := []Option{
		WithLevel(ParseLevel(cfg.Level)),
		WithExtractors(extractors...),
		WithSentry(cfg.Sentry),
	}
	if strings.EqualFold(cfg.Format, "text") {
		opts = append(opts, WithText())
	}
	return New(opts...)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown values map to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Component returns a child logger tagged with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNope()
	}
	return l.With(slog.String("component", name))
}
