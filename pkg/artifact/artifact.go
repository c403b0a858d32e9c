package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Artifact file names expected in the build output.
const (
	BundleFile   = "server-bundle.json"
	ManifestFile = "vue-ssr-client-manifest.json"
)

// Set is everything needed to construct a renderer.
type Set struct {
	Template       string
	BaseDir        string
	Bundle         json.RawMessage
	ClientManifest json.RawMessage
}

// Template locates the HTML shell. It is read separately from the bundle
// because it usually lives in the source tree, not in the build output.
type Template struct {
	Source Source
	Name   string
}

// TemplateFile returns a Template read from local disk.
func TemplateFile(path string) Template {
	return Template{
		Source: Dir(filepath.Dir(path)),
		Name:   filepath.Base(path),
	}
}

// Load reads the template and both JSON artifacts concurrently.
// Any missing or malformed input yields an *Error naming the file.
func Load(ctx context.Context, src Source, tmpl Template) (*Set, error) {
	set := &Set{}
	if loc, ok := src.(Locator); ok {
		set.BaseDir = loc.Dir()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if tmpl.Source == nil || tmpl.Name == "" {
			return &Error{Name: "template", Err: ErrMissing}
		}
		data, err := read(gctx, tmpl.Source, tmpl.Name)
		if err != nil {
			return err
		}
		set.Template = string(data)
		return nil
	})

	g.Go(func() error {
		data, err := readJSON(gctx, src, BundleFile)
		if err != nil {
			return err
		}
		set.Bundle = data
		return nil
	})

	g.Go(func() error {
		data, err := readJSON(gctx, src, ManifestFile)
		if err != nil {
			return err
		}
		set.ClientManifest = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func read(ctx context.Context, src Source, name string) ([]byte, error) {
	data, err := src.ReadFile(ctx, name)
	if err != nil {
		if IsNotExist(err) {
			return nil, &Error{Name: name, Err: errors.Join(ErrMissing, err)}
		}
		return nil, &Error{Name: name, Err: err}
	}
	return data, nil
}

func readJSON(ctx context.Context, src Source, name string) (json.RawMessage, error) {
	data, err := read(ctx, src, name)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, &Error{Name: name, Err: ErrMalformed}
	}
	return json.RawMessage(data), nil
}
