package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/tree"
	"github.com/alnah/go-blogbook/internal/watch"
)

// runIndexCmd writes per-folder indexes and, optionally, the aggregated
// root index. With --watch it keeps regenerating until interrupted.
func runIndexCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseIndexFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	root, err := positionalRoot(positional, cfg)
	if err != nil {
		return err
	}
	cfg.Content.Root = root
	if f.indexName != "" {
		cfg.Content.IndexName = f.indexName
	}
	if f.rootIndex != "" {
		cfg.Content.RootIndex = f.rootIndex
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common)
	builder, err := tree.NewBuilder(treeConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	if err := writeIndexes(builder, cfg, logger); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}

	logger.Info("watching for changes", "root", root)
	err = watch.Watch(ctx, root, watch.Options{
		Debounce: f.debounce,
		SkipDir: func(name string) bool {
			return slices.ContainsFunc(cfg.Content.ExcludeFolders, func(ex string) bool {
				return strings.EqualFold(ex, name)
			})
		},
		Ignore: indexArtifacts(cfg),
		Logger: logger,
	}, func(_ context.Context, changed []string) error {
		logger.Info("content changed", "files", len(changed))
		return writeIndexes(builder, cfg, logger)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// writeIndexes regenerates every folder index, then the root index when
// one is configured.
func writeIndexes(b *tree.Builder, cfg *config.Config, logger *slog.Logger) error {
	written, err := b.GenerateFolderIndexes(cfg.Content.Root, cfg.Content.IndexName)
	if err != nil {
		return err
	}
	logger.Debug("folder indexes written", "count", len(written))

	if cfg.Content.RootIndex == "" {
		return nil
	}
	root, err := b.AggregateRootIndex(cfg.Content.Root, cfg.Content.IndexName)
	if err != nil {
		return err
	}
	if err := tree.WriteIndex(cfg.Content.RootIndex, root); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Content.RootIndex, err)
	}
	logger.Info("root index written", "path", cfg.Content.RootIndex, "folders", len(root.Children))
	return nil
}

// indexArtifacts reports whether a changed path is one the indexer writes
// itself, so regeneration does not retrigger the watcher.
func indexArtifacts(cfg *config.Config) func(rel string) bool {
	rootIndex := ""
	if cfg.Content.RootIndex != "" {
		if rel, err := filepath.Rel(cfg.Content.Root, cfg.Content.RootIndex); err == nil {
			rootIndex = filepath.ToSlash(rel)
		}
	}
	return func(rel string) bool {
		base := filepath.Base(rel)
		return base == cfg.Content.IndexName ||
			base == filepath.Base(cfg.Content.ChecksumStore) ||
			filepath.ToSlash(rel) == rootIndex
	}
}
