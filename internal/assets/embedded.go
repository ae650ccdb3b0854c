package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// builtin holds the stylesheet and page template shipped with the binary.
//
//go:embed styles/* templates/*
var builtin embed.FS

// EmbeddedLoader serves the built-in assets. It is the fallback of every
// AssetResolver, so a book always renders even without a custom asset
// directory.
type EmbeddedLoader struct{}

// NewEmbeddedLoader returns a loader over the compiled-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle returns styles/<name>.css from the binary.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load("styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate returns templates/<name>.html from the binary.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load("templates", name, ".html", ErrTemplateNotFound)
}

// load mirrors FilesystemLoader.load over the embedded tree. embed.FS paths
// always use forward slashes, hence path rather than filepath.
func (e *EmbeddedLoader) load(kind, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := builtin.ReadFile(path.Join(kind, name+ext))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q (built-in)", notFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
