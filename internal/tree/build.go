package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/alnah/go-blogbook/internal/dateutil"
	"github.com/alnah/go-blogbook/internal/metadata"
)

// Config controls which entries the builder keeps and how nodes are labelled.
type Config struct {
	ExcludeFolders   []string
	ExcludeFiles     []string
	AcceptExtensions []string
	FolderMetaFile   string
	MarkdownExt      string
	RootLabel        string
	DateFormat       string
	CreatedOnFormat  string
}

// DefaultConfig returns the builder configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		ExcludeFolders:   []string{"images", ".git", "node_modules"},
		ExcludeFiles:     []string{"info.json", "index.json"},
		AcceptExtensions: []string{".md", ".json", ".txt", ".html"},
		FolderMetaFile:   "info.json",
		MarkdownExt:      ".md",
		RootLabel:        "blogs",
		DateFormat:       dateutil.HumanFormat,
		CreatedOnFormat:  dateutil.SortableFormat,
	}
}

// Builder walks a content directory and produces a Node tree.
type Builder struct {
	cfg     Config
	logger  *slog.Logger
	stamper *dateutil.Stamper
}

// NewBuilder validates cfg's date formats. A nil logger discards output.
func NewBuilder(cfg Config, logger *slog.Logger) (*Builder, error) {
	stamper, err := dateutil.NewStamper(cfg.DateFormat, cfg.CreatedOnFormat)
	if err != nil {
		return nil, fmt.Errorf("tree builder: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{cfg: cfg, logger: logger, stamper: stamper}, nil
}

// Config returns the builder configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build walks rootDir/relPath. relPath is slash-separated and relative to
// rootDir; an empty relPath builds the whole root.
func (b *Builder) Build(rootDir, relPath string) (*Node, error) {
	info, err := os.Stat(rootDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootDir)
	}
	return b.BuildFS(os.DirFS(rootDir), relPath)
}

// BuildFS is Build over an arbitrary file system.
func (b *Builder) BuildFS(fsys fs.FS, relPath string) (*Node, error) {
	relPath = strings.Trim(path.Clean("/"+relPath), "/")
	dir := relPath
	if dir == "" {
		dir = "."
	}
	info, err := fs.Stat(fsys, dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, dir)
	}
	return b.buildDir(fsys, relPath)
}

func (b *Builder) buildDir(fsys fs.FS, relPath string) (*Node, error) {
	dir := relPath
	if dir == "" {
		dir = "."
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	node := &Node{Label: b.cfg.RootLabel, Type: Directory, Children: []*Node{}}
	if relPath != "" {
		node.Label = path.Base(relPath)
	}

	if meta := b.folderMeta(fsys, dir); meta != nil {
		node.mergeMeta(meta)
		if title := strings.TrimSpace(meta.String("title")); title != "" {
			node.ID = Slugify(title)
		}
		if id := strings.TrimSpace(meta.String(keyID)); id != "" {
			node.ID = id
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(relPath, name)

		switch {
		case entry.IsDir():
			if containsFold(b.cfg.ExcludeFolders, name) {
				continue
			}
			child, err := b.buildDir(fsys, childRel)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)

		case entry.Type().IsRegular():
			if containsFold(b.cfg.ExcludeFiles, name) || !b.accepted(name) {
				continue
			}
			child, err := b.buildFile(fsys, entry, childRel)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)

		default:
			b.logger.Debug("skipping non-regular entry", "path", childRel)
		}
	}

	return node, nil
}

func (b *Builder) buildFile(fsys fs.FS, entry fs.DirEntry, relPath string) (*Node, error) {
	info, err := entry.Info()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", relPath, err)
	}
	stamp := b.stamper.Stamp(info.ModTime())
	name := entry.Name()

	node := &Node{
		ID:        Slugify(name),
		Label:     name,
		Type:      File,
		Path:      path.Join(b.cfg.RootLabel, relPath),
		Date:      stamp.Human,
		CreatedOn: stamp.Sortable,
	}

	if b.cfg.MarkdownExt == "" || !strings.HasSuffix(name, b.cfg.MarkdownExt) {
		return node, nil
	}

	data, err := fs.ReadFile(fsys, relPath)
	if err != nil {
		b.logger.Warn("could not read document metadata", "path", relPath, "error", err)
		return node, nil
	}
	meta := metadata.Extract(string(data))
	node.mergeMeta(meta)
	if id := strings.TrimSpace(meta.String(keyID)); id != "" {
		node.ID = id
	}
	return node, nil
}

// folderMeta returns nil when the folder has no metadata file and an empty
// set when the file exists but does not parse.
func (b *Builder) folderMeta(fsys fs.FS, dir string) metadata.Metadata {
	if b.cfg.FolderMetaFile == "" {
		return nil
	}
	metaPath := path.Join(dir, b.cfg.FolderMetaFile)
	data, err := fs.ReadFile(fsys, metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		b.logger.Warn("could not read folder metadata", "path", metaPath, "error", err)
		return metadata.Metadata{}
	}
	meta, err := metadata.ParseFolderMeta(data)
	if err != nil {
		b.logger.Warn("could not parse folder metadata", "path", metaPath, "error", err)
		return metadata.Metadata{}
	}
	return meta
}

func (b *Builder) accepted(name string) bool {
	if len(b.cfg.AcceptExtensions) == 0 {
		return true
	}
	return containsFold(b.cfg.AcceptExtensions, path.Ext(name))
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
