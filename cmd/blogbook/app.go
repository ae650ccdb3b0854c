package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	flag "github.com/spf13/pflag"

	blogbook "github.com/alnah/go-blogbook"
	"github.com/alnah/go-blogbook/internal/assets"
	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/fileutil"
	"github.com/alnah/go-blogbook/internal/hints"
	"github.com/alnah/go-blogbook/internal/tree"
)

// runMain dispatches args[1:] to a command and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "index":
		err = runIndexCmd(ctx, rest, env)
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "build":
		err = runBuildCmd(ctx, rest, env)
	case "checksum":
		err = runChecksumCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "blogbook %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// loadConfig resolves defaults < config file < BLOGBOOK_* variables.
// Command flags are merged by the caller.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Environ(), env.Stderr)
	envCfg := loadEnvConfig(env.Getenv, env.Stderr)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// newLogger builds the CLI's structured logger on w.
func newLogger(w io.Writer, common commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// treeConfig maps the content section onto the tree builder. An output
// directory inside the content root is excluded so generated PDFs and HTML
// never end up in the index.
func treeConfig(cfg *config.Config) tree.Config {
	tc := tree.DefaultConfig()
	tc.ExcludeFolders = append([]string(nil), cfg.Content.ExcludeFolders...)
	if name, ok := outputUnderRoot(cfg); ok && !slices.Contains(tc.ExcludeFolders, name) {
		tc.ExcludeFolders = append(tc.ExcludeFolders, name)
	}
	tc.ExcludeFiles = cfg.Content.ExcludeFiles
	tc.AcceptExtensions = cfg.Content.AcceptExtensions
	tc.FolderMetaFile = cfg.Content.FolderMeta
	tc.RootLabel = cfg.Content.RootLabel
	if cfg.Dates.Human != "" {
		tc.DateFormat = cfg.Dates.Human
	}
	if cfg.Dates.Sortable != "" {
		tc.CreatedOnFormat = cfg.Dates.Sortable
	}
	return tc
}

// outputUnderRoot returns the output directory's base name when it lies
// strictly below the content root.
func outputUnderRoot(cfg *config.Config) (string, bool) {
	if cfg.Output.Dir == "" {
		return "", false
	}
	root, err := filepath.Abs(cfg.Content.Root)
	if err != nil {
		return "", false
	}
	out, err := filepath.Abs(cfg.Output.Dir)
	if err != nil || out == root || !fileutil.Within(root, out) {
		return "", false
	}
	return filepath.Base(out), true
}

// pipelineConfig maps the config onto the conversion pipeline.
func pipelineConfig(cfg *config.Config) blogbook.PipelineConfig {
	tc := treeConfig(cfg)
	return blogbook.PipelineConfig{
		ContentRoot: cfg.Content.Root,
		OutputDir:   cfg.Output.Dir,
		MergedName:  cfg.Output.MergedName,
		PathPrefix:  tc.RootLabel,
		Concurrency: cfg.Convert.Concurrency,
		MarkdownExt: tc.MarkdownExt,
		Clean:       cfg.Output.Clean,
		HTML:        cfg.Output.HTML,
		Tree:        tc,
	}
}

// converterOptions maps the config onto converter options.
func converterOptions(cfg *config.Config) []blogbook.Option {
	opts := []blogbook.Option{
		blogbook.WithDiagramTimeout(cfg.Convert.DiagramTimeout),
		blogbook.WithRawHTML(cfg.Convert.RawHTML),
		blogbook.WithAssetRoot(cfg.Content.Root),
	}
	if cfg.Convert.Timeout > 0 {
		opts = append(opts, blogbook.WithTimeout(cfg.Convert.Timeout))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, blogbook.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Convert.Style != "" {
		opts = append(opts, blogbook.WithStyle(cfg.Convert.Style))
	}
	if cfg.Convert.Template != "" {
		opts = append(opts, blogbook.WithTemplate(cfg.Convert.Template))
	}

	if !cfg.TOC.Enabled {
		return append(opts, blogbook.WithTOC(nil))
	}
	return append(opts, blogbook.WithTOC(&blogbook.TOC{
		Title:      cfg.TOC.Title,
		MinDepth:   cfg.TOC.MinDepth,
		MaxDepth:   cfg.TOC.MaxDepth,
		MarkerOnly: cfg.TOC.MarkerOnly,
	}))
}

// positionalRoot returns the root argument or the configured content root.
func positionalRoot(positional []string, cfg *config.Config) (string, error) {
	switch len(positional) {
	case 0:
		return cfg.Content.Root, nil
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("%w: expected at most one root, got %d", ErrUsage, len(positional))
	}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, blogbook.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, blogbook.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir, dirErr := os.UserConfigDir(); dirErr == nil {
			searched = append(searched, filepath.Join(dir, config.AppName, "config.yaml"))
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, tree.ErrRootNotFound):
		return hints.ForRootNotFound()
	case errors.Is(err, tree.ErrIndexNotFound):
		return hints.ForIndexNotFound()
	case errors.Is(err, tree.ErrInvalidTree):
		return hints.ForInvalidTree()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName})
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
