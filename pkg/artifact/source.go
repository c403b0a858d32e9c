package artifact

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source gives read access to build artifacts by file name.
type Source interface {
	// ReadFile returns fs.ErrNotExist (possibly wrapped) for missing files.
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Locator is implemented by sources that live in a local directory.
type Locator interface {
	Dir() string
}

// FS reads artifacts from any fs.FS, e.g. an in-memory build output or an
// embedded directory.
func FS(fsys fs.FS) Source {
	return fsSource{fsys: fsys}
}

type fsSource struct {
	fsys fs.FS
}

func (s fsSource) ReadFile(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, name)
}

// Dir reads artifacts from a directory on local disk.
// Relative paths are resolved against the working directory.
func Dir(path string) Source {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return dirSource{dir: abs, fsys: os.DirFS(abs)}
}

type dirSource struct {
	fsys fs.FS
	dir  string
}

func (s dirSource) ReadFile(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, name)
}

func (s dirSource) Dir() string {
	return s.dir
}

// readAll drains and closes rc.
func readAll(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

// IsNotExist reports whether err means the artifact is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
