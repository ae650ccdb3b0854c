// Package checksum digests documents and persists the digest map.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-blogbook/internal/fileutil"
)

// DefaultStoreName is the file name of the persisted digest map.
const DefaultStoreName = ".blog-checksum.json"

// Map associates a forward-slash relative document path with its hex digest.
type Map map[string]string

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Digest returns the hex-encoded SHA-256 digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the content walk
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Store reads and writes a Map at Path.
type Store struct {
	Path   string
	Logger *slog.Logger
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Load returns the persisted map. A missing or malformed store yields an
// empty map; the malformed case is logged.
func (s *Store) Load() Map {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger().Warn("could not read checksum store", "path", s.Path, "error", err)
		}
		return Map{}
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		s.logger().Warn("ignoring malformed checksum store", "path", s.Path, "error", err)
		return Map{}
	}
	return m
}

// Save overwrites the store with m.
func (s *Store) Save(m Map) error {
	if m == nil {
		m = Map{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checksums: %w", err)
	}
	return fileutil.WriteFile(s.Path, append(data, '\n'))
}

// Collect digests every file under root whose name ends in ext. Unreadable
// files are logged and left out.
func Collect(root, ext string, logger *slog.Logger) (Map, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !fileutil.DirExists(root) {
		return nil, fmt.Errorf("checksum: %w: %s", fs.ErrNotExist, root)
	}

	m := Map{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sum, err := Digest(path)
		if err != nil {
			logger.Warn("failed to digest document", "path", path, "error", err)
			return nil
		}
		m[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checksum: walking %s: %w", root, err)
	}
	return m, nil
}

// Changed returns the sorted paths of cur that are new or whose digest
// differs from prev.
func Changed(prev, cur Map) []string {
	var out []string
	for path, sum := range cur {
		if prev[path] != sum {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Removed returns the sorted paths present in prev but absent from cur.
func Removed(prev, cur Map) []string {
	var out []string
	for path := range prev {
		if _, ok := cur[path]; !ok {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
