package blogbook

import (
	"fmt"
	"log/slog"
	"time"
)

// TOC depth bounds.
const (
	MinTOCDepth = 1
	MaxTOCDepth = 6
)

// TOC configures the generated table of contents.
type TOC struct {
	Title    string
	MinDepth int // Minimum heading level (0 = 2, skips the title heading)
	MaxDepth int // Maximum heading level (0 = 6)
	// MarkerOnly renders the TOC only where a [[toc]] marker appears.
	MarkerOnly bool
}

// DefaultTOC returns the TOC used when none is configured.
func DefaultTOC() *TOC {
	return &TOC{MinDepth: 2, MaxDepth: MaxTOCDepth}
}

// Validate checks that TOC settings are valid.
// Returns nil if t is nil (nil means no TOC).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	minDepth, maxDepth := t.depths()
	if minDepth < MinTOCDepth || minDepth > MaxTOCDepth {
		return fmt.Errorf("%w: minDepth %d (must be between %d and %d)", ErrInvalidTOCDepth, minDepth, MinTOCDepth, MaxTOCDepth)
	}
	if maxDepth < MinTOCDepth || maxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: maxDepth %d (must be between %d and %d)", ErrInvalidTOCDepth, maxDepth, MinTOCDepth, MaxTOCDepth)
	}
	if minDepth > maxDepth {
		return fmt.Errorf("%w: minDepth %d exceeds maxDepth %d", ErrInvalidTOCDepth, minDepth, maxDepth)
	}
	return nil
}

func (t *TOC) depths() (int, int) {
	minDepth, maxDepth := t.MinDepth, t.MaxDepth
	if minDepth == 0 {
		minDepth = 2
	}
	if maxDepth == 0 {
		maxDepth = MaxTOCDepth
	}
	return minDepth, maxDepth
}

// Result describes one rendered document.
type Result struct {
	Path string // Written PDF
	HTML string // Page handed to the browser
	// Degraded is set when diagrams did not finish rendering in time.
	Degraded bool
	// Images counts the local images embedded into the page.
	Images int
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout        time.Duration
	diagramTimeout time.Duration
	assetPath      string
	assetRoot      string
	style          string
	template       string
	extraCSS       string
	mermaidURL     string
	rawHTML        bool
	toc            *TOC
}

// Defaults used when no option overrides them.
const (
	defaultTimeout        = 90 * time.Second
	defaultDiagramTimeout = 10 * time.Second
)

// WithTimeout sets the per-document page load timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("blogbook: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithDiagramTimeout bounds the wait for diagrams to render. Zero skips the
// wait entirely.
// Panics if d < 0.
func WithDiagramTimeout(d time.Duration) Option {
	if d < 0 {
		panic("blogbook: WithDiagramTimeout duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.diagramTimeout = d
	}
}

// WithLogger sets the logger for warnings such as diagram timeouts and
// images that could not be embedded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAssetPath loads styles and templates from dir, falling back to the
// embedded assets.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithAssetRoot bounds image embedding: images resolving outside dir are
// left untouched. Defaults to each document's own directory.
func WithAssetRoot(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetRoot = dir
	}
}

// WithStyle selects the stylesheet by name.
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithTemplate selects the page template by name.
func WithTemplate(name string) Option {
	return func(c *Converter) {
		c.cfg.template = name
	}
}

// WithExtraCSS appends css after the stylesheet.
func WithExtraCSS(css string) Option {
	return func(c *Converter) {
		c.cfg.extraCSS = css
	}
}

// WithMermaidURL overrides where the page loads the diagram runtime from.
func WithMermaidURL(url string) Option {
	return func(c *Converter) {
		c.cfg.mermaidURL = url
	}
}

// WithRawHTML passes inline HTML in documents through to the page.
func WithRawHTML(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.rawHTML = enabled
	}
}

// WithTOC sets the table of contents; nil disables it.
func WithTOC(toc *TOC) Option {
	return func(c *Converter) {
		c.cfg.toc = toc
	}
}

// withRenderer injects the PDF backend (tests).
func withRenderer(r pdfRenderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}
