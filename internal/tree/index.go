package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-blogbook/internal/fileutil"
)

// WriteIndex validates root and writes it as indented JSON to path.
func WriteIndex(path string, root *Node) error {
	if err := Validate(root); err != nil {
		return err
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	return fileutil.WriteFile(path, append(data, '\n'))
}

// ReadIndex loads an index artifact. A missing file yields ErrIndexNotFound.
func ReadIndex(path string) (*Node, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- index path is user-provided by design
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidIndex, path, err)
	}
	return &root, nil
}

// GenerateFolderIndexes builds, validates and writes <sub>/<indexName> for
// every non-excluded immediate subfolder of rootDir. A stale index is
// removed before the folder is walked. It returns the written paths.
func (b *Builder) GenerateFolderIndexes(rootDir, indexName string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootDir)
		}
		return nil, fmt.Errorf("reading %s: %w", rootDir, err)
	}

	var written []string
	for _, entry := range entries {
		if !entry.IsDir() || containsFold(b.cfg.ExcludeFolders, entry.Name()) {
			continue
		}
		out := filepath.Join(rootDir, entry.Name(), indexName)
		if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return written, fmt.Errorf("removing stale index: %w", err)
		}

		node, err := b.Build(rootDir, entry.Name())
		if err != nil {
			return written, err
		}
		if err := WriteIndex(out, node); err != nil {
			return written, fmt.Errorf("writing %s: %w", out, err)
		}
		b.logger.Info("index generated", "path", out, "documents", len(Documents(node, b.cfg.MarkdownExt)))
		written = append(written, out)
	}
	return written, nil
}

// AggregateRootIndex reads each immediate subfolder's index into a single
// root directory node. Unreadable or invalid subfolder indexes are logged
// and skipped.
func (b *Builder) AggregateRootIndex(rootDir, indexName string) (*Node, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootDir)
		}
		return nil, fmt.Errorf("reading %s: %w", rootDir, err)
	}

	root := &Node{Label: b.cfg.RootLabel, Type: Directory, Children: []*Node{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		indexPath := filepath.Join(rootDir, entry.Name(), indexName)
		child, err := ReadIndex(indexPath)
		if errors.Is(err, ErrIndexNotFound) {
			continue
		}
		if err != nil {
			b.logger.Warn("skipping subfolder index", "path", indexPath, "error", err)
			continue
		}
		root.Children = append(root.Children, child)
	}
	return root, nil
}

// Documents returns the file nodes under root whose path ends in ext, in
// pre-order traversal order.
func Documents(root *Node, ext string) []*Node {
	var docs []*Node
	Walk(root, func(n *Node) bool {
		if n.Type == File && strings.HasSuffix(n.Path, ext) {
			docs = append(docs, n)
		}
		return true
	})
	return docs
}
