package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	blogbook "github.com/alnah/go-blogbook"
	"github.com/alnah/go-blogbook/internal/config"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// indexFlags holds flags for the index command.
type indexFlags struct {
	common    commonFlags
	rootIndex string
	indexName string
	watch     bool
	debounce  time.Duration
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	title      string
	minDepth   int
	maxDepth   int
	markerOnly bool
	disabled   bool
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string
	template  string
	assetPath string
}

// convertFlags holds flags for the convert and build commands.
type convertFlags struct {
	common         commonFlags
	index          string
	content        string
	rootIndex      string // build only
	output         string
	merged         string
	workers        int
	timeout        time.Duration
	diagramTimeout time.Duration
	html           bool
	noClean        bool
	rawHTML        bool
	metricsFile    string
	toc            tocFlags
	assets         assetFlags

	set *flag.FlagSet
}

// changed reports whether the named flag was given on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// checksumFlags holds flags for the checksum command.
type checksumFlags struct {
	common commonFlags
	store  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.minDepth, "toc-min-depth", 0, "min heading depth for TOC (1-6)")
	fs.IntVar(&f.maxDepth, "toc-max-depth", 0, "max heading depth for TOC (1-6)")
	fs.BoolVar(&f.markerOnly, "toc-marker-only", false, "only render the TOC where [[toc]] appears")
	fs.BoolVar(&f.disabled, "no-toc", false, "disable table of contents")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	fs.StringVar(&f.template, "template", "", "page template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newFlagSet creates a FlagSet whose usage goes to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseErr keeps flag.ErrHelp recognisable and marks everything else as
// a usage error.
func parseErr(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseIndexFlags parses index command flags and returns positional args.
func parseIndexFlags(args []string, w io.Writer) (*indexFlags, []string, error) {
	fs := newFlagSet("index", w, printIndexUsage)
	f := &indexFlags{}

	fs.StringVar(&f.rootIndex, "root-index", "", "also write the aggregated index to this path")
	fs.StringVar(&f.indexName, "index-name", "", "per-folder index file name")
	fs.BoolVar(&f.watch, "watch", false, "regenerate indexes when content changes")
	fs.DurationVar(&f.debounce, "debounce", 0, "quiet period before regenerating in watch mode")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseErr(err)
	}
	return f, fs.Args(), nil
}

// parseConvertFlags parses convert or build flags and returns positional args.
func parseConvertFlags(cmd string, args []string, w io.Writer) (*convertFlags, []string, error) {
	usage := printConvertUsage
	if cmd == "build" {
		usage = printBuildUsage
	}
	fs := newFlagSet(cmd, w, usage)
	f := &convertFlags{set: fs}

	fs.StringVar(&f.index, "index", "", "index artifact to convert")
	fs.StringVar(&f.content, "content", "", "content root the index paths resolve against")
	if cmd == "build" {
		fs.StringVar(&f.rootIndex, "root-index", "", "aggregated index path")
	}
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.merged, "merged", "", "merged PDF file name")
	fs.IntVarP(&f.workers, "workers", "w", 0, "documents converted in parallel (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-document timeout (e.g., 30s, 2m)")
	fs.DurationVar(&f.diagramTimeout, "diagram-timeout", 0, "wait for diagrams before printing (0 = skip)")
	fs.BoolVar(&f.html, "html", false, "also write the rendered HTML")
	fs.BoolVar(&f.noClean, "no-clean", false, "keep existing output directory contents")
	fs.BoolVar(&f.rawHTML, "raw-html", false, "pass inline HTML through to the page")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	addTOCFlags(fs, &f.toc)
	addAssetFlags(fs, &f.assets)
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseErr(err)
	}
	return f, fs.Args(), nil
}

// parseChecksumFlags parses checksum command flags and returns positional args.
func parseChecksumFlags(args []string, w io.Writer) (*checksumFlags, []string, error) {
	fs := newFlagSet("checksum", w, printChecksumUsage)
	f := &checksumFlags{}

	fs.StringVar(&f.store, "store", "", "checksum store path")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseErr(err)
	}
	return f, fs.Args(), nil
}

// mergeConvertFlags applies explicitly set flags over cfg (CLI wins).
func mergeConvertFlags(f *convertFlags, cfg *config.Config) {
	if f.changed("content") {
		cfg.Content.Root = f.content
	}
	if f.changed("index") {
		cfg.Content.RootIndex = f.index
	}
	if f.changed("root-index") {
		cfg.Content.RootIndex = f.rootIndex
	}
	if f.changed("output") {
		cfg.Output.Dir = f.output
	}
	if f.changed("merged") {
		cfg.Output.MergedName = f.merged
	}
	if f.changed("workers") {
		cfg.Convert.Concurrency = blogbook.ResolvePoolSize(f.workers)
	}
	if f.changed("timeout") {
		cfg.Convert.Timeout = f.timeout
	}
	if f.changed("diagram-timeout") {
		cfg.Convert.DiagramTimeout = f.diagramTimeout
	}
	if f.html {
		cfg.Output.HTML = true
	}
	if f.noClean {
		cfg.Output.Clean = false
	}
	if f.rawHTML {
		cfg.Convert.RawHTML = true
	}
	if f.changed("metrics-file") {
		cfg.Metrics.TextFile = f.metricsFile
	}
	if f.changed("style") {
		cfg.Convert.Style = f.assets.style
	}
	if f.changed("template") {
		cfg.Convert.Template = f.assets.template
	}
	if f.changed("asset-path") {
		cfg.Assets.BasePath = f.assets.assetPath
	}

	if f.changed("toc-title") {
		cfg.TOC.Title = f.toc.title
	}
	if f.changed("toc-min-depth") {
		cfg.TOC.MinDepth = f.toc.minDepth
	}
	if f.changed("toc-max-depth") {
		cfg.TOC.MaxDepth = f.toc.maxDepth
	}
	if f.toc.markerOnly {
		cfg.TOC.MarkerOnly = true
	}
	if f.toc.disabled {
		cfg.TOC.Enabled = false
	}
}
