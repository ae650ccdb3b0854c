package main

import (
	"fmt"

	"github.com/alnah/go-blogbook/internal/checksum"
	"github.com/alnah/go-blogbook/internal/tree"
)

// runChecksumCmd digests every document under root, prints what changed
// since the stored map and saves the new map.
func runChecksumCmd(args []string, env *Environment) error {
	f, positional, err := parseChecksumFlags(args, env.Stderr)
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
	if f.store != "" {
		cfg.Content.ChecksumStore = f.store
	}

	logger := newLogger(env.Stderr, f.common)
	cur, err := checksum.Collect(root, tree.DefaultConfig().MarkdownExt, logger)
	if err != nil {
		return err
	}

	store := &checksum.Store{Path: storePath(cfg), Logger: logger}
	prev := store.Load()
	changed := checksum.Changed(prev, cur)
	removed := checksum.Removed(prev, cur)

	for _, p := range changed {
		fmt.Fprintf(env.Stdout, "changed: %s\n", p)
	}
	for _, p := range removed {
		fmt.Fprintf(env.Stdout, "removed: %s\n", p)
	}
	fmt.Fprintf(env.Stdout, "%d documents, %d changed, %d removed\n", len(cur), len(changed), len(removed))

	if err := store.Save(cur); err != nil {
		return fmt.Errorf("saving checksums: %w", err)
	}
	return nil
}
