package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/ssr/pkg/artifact"
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithOutput sets where the build command's stdout and stderr go.
// Default: os.Stderr.
func WithOutput(out io.Writer) Option {
	return func(w *Watcher) {
		w.out = out
	}
}

// Watcher is a Builder that waits for an external bundler to write the
// artifacts, then rebuilds the renderer whenever the output changes and tells
// connected browsers to reload.
type Watcher struct {
	out io.Writer
	log *slog.Logger
	hub *hub
	cfg Config
}

// NewWatcher creates a Watcher. Zero config fields take their defaults.
func NewWatcher(cfg Config, opts ...Option) *Watcher {
	w := &Watcher{
		cfg: cfg.withDefaults(),
		log: slog.New(slog.DiscardHandler),
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.hub = newHub(w.log)
	return w
}

// Config returns the effective configuration.
func (w *Watcher) Config() Config {
	return w.cfg
}

// Clients returns the number of connected live-reload clients.
func (w *Watcher) Clients() int {
	return w.hub.count()
}

// Build implements Builder.
func (w *Watcher) Build(ctx context.Context, onUpdate UpdateFunc) (Result, error) {
	exited := w.startCommand(ctx)

	if err := w.waitForArtifacts(ctx, exited); err != nil {
		return Result{}, err
	}

	src := artifact.Dir(w.cfg.Output)
	if err := onUpdate(ctx, src); err != nil {
		return Result{}, err
	}
	w.log.InfoContext(ctx, "development build ready", slog.String("output", w.cfg.Output))

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return Result{}, errors.Join(ErrWatch, err)
	}
	if err := addTree(fw, w.cfg.Output); err != nil {
		_ = fw.Close()
		return Result{}, errors.Join(ErrWatch, err)
	}

	go w.watch(ctx, fw, src, onUpdate)

	return Result{
		Hot:    w.hub.middleware(w.cfg.ReloadPath),
		Assets: Assets(w.cfg.Output, w.cfg.PublicPath),
	}, nil
}

// startCommand launches the configured bundler. The returned channel
// receives its exit error, or nothing when no command is configured.
func (w *Watcher) startCommand(ctx context.Context) <-chan error {
	if len(w.cfg.Command) == 0 {
		return nil
	}

	exited := make(chan error, 1)
	cmd := exec.CommandContext(ctx, w.cfg.Command[0], w.cfg.Command[1:]...)
	cmd.Dir = w.cfg.Dir
	cmd.Stdout = w.out
	cmd.Stderr = w.out

	w.log.InfoContext(ctx, "starting build command", slog.Any("command", w.cfg.Command))

	go func() {
		exited <- cmd.Run()
	}()
	return exited
}

func (w *Watcher) waitForArtifacts(ctx context.Context, exited <-chan error) error {
	var deadline <-chan time.Time
	if w.cfg.StartTimeout > 0 {
		t := time.NewTimer(w.cfg.StartTimeout)
		defer t.Stop()
		deadline = t.C
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for !w.artifactsExist() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-exited:
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCommandExited, err)
			}
			// A one-shot build may finish between two polls.
			if w.artifactsExist() {
				return nil
			}
			return ErrCommandExited
		case <-deadline:
			return fmt.Errorf("%w after %s", ErrTimeout, w.cfg.StartTimeout)
		case <-ticker.C:
		}
	}
	return nil
}

func (w *Watcher) artifactsExist() bool {
	for _, name := range []string{artifact.BundleFile, artifact.ManifestFile} {
		if _, err := os.Stat(filepath.Join(w.cfg.Output, name)); err != nil {
			return false
		}
	}
	return true
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher, src artifact.Source, onUpdate UpdateFunc) {
	defer func() {
		_ = fw.Close()
		w.hub.close()
	}()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addTree(fw, ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.WarnContext(ctx, "output watcher error", slog.String("error", err.Error()))

		case <-fire:
			fire = nil
			w.rebuild(ctx, src, onUpdate)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, src artifact.Source, onUpdate UpdateFunc) {
	if !w.artifactsExist() {
		return
	}
	if err := onUpdate(ctx, src); err != nil {
		w.log.ErrorContext(ctx, "rebuild failed, keeping previous renderer", slog.String("error", err.Error()))
		return
	}
	n := w.hub.broadcast(ReloadMessage)
	w.log.InfoContext(ctx, "rebuilt", slog.Int("reloaded_clients", n))
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
