package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alnah/go-blogbook/internal/checksum"
	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/tree"
)

// defaultRootIndexName is the aggregated index written by build when
// neither the config nor --root-index names one.
const defaultRootIndexName = "all-blogs-index.json"

// runBuildCmd indexes every folder, aggregates the root index, converts
// it and records document checksums.
func runBuildCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseConvertFlags("build", args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	mergeConvertFlags(f, cfg)
	root, err := positionalRoot(positional, cfg)
	if err != nil {
		return err
	}
	cfg.Content.Root = root
	if cfg.Content.RootIndex == "" {
		cfg.Content.RootIndex = filepath.Join(root, defaultRootIndexName)
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

	if _, err := convert(ctx, cfg, cfg.Content.RootIndex, env, logger); err != nil {
		return err
	}

	sums, err := checksum.Collect(root, builder.Config().MarkdownExt, logger)
	if err != nil {
		return err
	}
	store := &checksum.Store{Path: storePath(cfg), Logger: logger}
	if err := store.Save(sums); err != nil {
		return fmt.Errorf("saving checksums: %w", err)
	}
	logger.Info("checksums recorded", "path", store.Path, "documents", len(sums))
	return nil
}

// storePath resolves the checksum store relative to the content root.
func storePath(cfg *config.Config) string {
	p := cfg.Content.ChecksumStore
	if p == "" {
		p = checksum.DefaultStoreName
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Content.Root, p)
}
