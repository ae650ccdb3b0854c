// Package watch re-runs an action when files under a content root change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// action runs.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoAction is returned when Watch is called without an action.
var ErrNoAction = errors.New("watch: no action")

// Action is called with the sorted, root-relative paths that changed since
// the previous call. Errors are logged and watching continues.
type Action func(ctx context.Context, changed []string) error

// Options tunes a Watcher.
type Options struct {
	Debounce time.Duration
	// SkipDir reports whether a directory (by base name) is left unwatched.
	SkipDir func(name string) bool
	// Ignore reports whether a changed path should be dropped, typically
	// the artifacts the action itself writes.
	Ignore func(rel string) bool
	Logger *slog.Logger
}

// Watch watches root recursively until ctx is cancelled. Events are
// debounced so a burst of writes produces one call to action. New
// directories are added to the watch list as they appear.
func Watch(ctx context.Context, root string, opts Options, action Action) error {
	if action == nil {
		return ErrNoAction
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root, opts.SkipDir); err != nil {
		return err
	}

	logger.Info("watcher started", "root", root)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher stopped")
			return nil

		case <-fire:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if len(changed) == 0 {
				continue
			}
			logger.Debug("changes detected", "count", len(changed))
			if err := action(ctx, changed); err != nil {
				logger.Error("watch action failed", "error", err)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if opts.SkipDir != nil && opts.SkipDir(info.Name()) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name, opts.SkipDir); addErr != nil {
						logger.Warn("failed to watch new directory", "path", ev.Name, "error", addErr)
					}
				}
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if opts.Ignore != nil && opts.Ignore(rel) {
				continue
			}
			pending[rel] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", watchErr)
		}
	}
}

// addDirsRecursive adds root and its non-skipped subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skip != nil && skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
