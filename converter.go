package blogbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-blogbook/internal/assets"
	"github.com/alnah/go-blogbook/internal/fileutil"
	"github.com/alnah/go-blogbook/internal/metadata"
	"github.com/alnah/go-blogbook/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ pipeline.TOCInjector          = (*pipeline.TOCInjection)(nil)
	_ pdfRenderer                   = (*rodRenderer)(nil)
)

// Converter renders one Markdown document at a time into a PDF.
// Create with NewConverter, and Close when done to release the browser.
// A Converter is not safe for concurrent use; use a ConverterPool.
type Converter struct {
	cfg           converterConfig
	logger        *slog.Logger
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	tocInjector   pipeline.TOCInjector
	template      *assets.DocumentTemplate
	css           string
	renderer      pdfRenderer
}

// NewConverter creates a Converter with default configuration.
// Returns error if options are invalid or assets fail to load.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:        defaultTimeout,
			diagramTimeout: defaultDiagramTimeout,
			style:          assets.DefaultStyleName,
			template:       assets.DefaultTemplateName,
			toc:            DefaultTOC(),
		},
		logger:       slog.New(slog.DiscardHandler),
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		cssInjector:  &pipeline.CSSInjection{},
		tocInjector:  pipeline.NewTOCInjection(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.toc.Validate(); err != nil {
		return nil, err
	}

	c.htmlConverter = pipeline.NewGoldmarkConverter(pipeline.GoldmarkOptions{RawHTML: c.cfg.rawHTML})

	resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	if c.css, err = resolver.LoadStyle(c.cfg.style); err != nil {
		return nil, fmt.Errorf("loading style %q: %w", c.cfg.style, err)
	}
	if c.template, err = assets.LoadDocumentTemplate(resolver, c.cfg.template); err != nil {
		return nil, fmt.Errorf("loading template %q: %w", c.cfg.template, err)
	}

	// Create PDF renderer if not injected (e.g., by tests)
	if c.renderer == nil {
		c.renderer = newRodRenderer(c.cfg.timeout, c.logger)
	}

	return c, nil
}

// Render converts sourcePath into a PDF at outputPath and returns the
// written path. Parent directories of outputPath are created.
func (c *Converter) Render(ctx context.Context, sourcePath, outputPath string) (string, error) {
	res, err := c.RenderDocument(ctx, sourcePath, outputPath)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// RenderDocument is Render with the full Result. All failures wrap
// ErrConversion. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (c *Converter) RenderDocument(ctx context.Context, sourcePath, outputPath string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %s: internal error: %v", ErrConversion, sourcePath, r)
		}
	}()

	page, images, hasDiagrams, err := c.buildPage(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConversion, sourcePath, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConversion, sourcePath, err)
	}
	defer cleanup()

	out, err := c.renderer.RenderFromFile(ctx, tmpPath, &pdfOptions{
		WaitForDiagrams: hasDiagrams,
		DiagramTimeout:  c.cfg.diagramTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConversion, sourcePath, err)
	}
	if out.Degraded {
		c.logger.Warn("diagrams not rendered before timeout", "path", sourcePath, "timeout", c.cfg.diagramTimeout)
	}

	if err := fileutil.WriteFile(outputPath, out.PDF); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConversion, sourcePath, err)
	}

	return &Result{Path: outputPath, HTML: page, Degraded: out.Degraded, Images: images}, nil
}

// RenderHTML runs every stage except PDF printing and returns the page that
// would be handed to the browser.
func (c *Converter) RenderHTML(ctx context.Context, sourcePath string) (page string, err error) {
	defer func() {
		if r := recover(); r != nil {
			page, err = "", fmt.Errorf("%w: %s: internal error: %v", ErrConversion, sourcePath, r)
		}
	}()

	page, _, _, err = c.buildPage(ctx, sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrConversion, sourcePath, err)
	}
	return page, nil
}

// buildPage reads sourcePath and produces the complete HTML page.
func (c *Converter) buildPage(ctx context.Context, sourcePath string) (string, int, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, false, err
	}

	raw, err := os.ReadFile(sourcePath) // #nosec G304 -- path comes from the content index
	if err != nil {
		return "", 0, false, fmt.Errorf("reading source: %w", err)
	}
	content := string(raw)

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, content)
	if ctx.Err() != nil {
		return "", 0, false, ctx.Err()
	}

	body, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		return "", 0, false, fmt.Errorf("converting to HTML: %w", err)
	}

	embedder := &pipeline.ImageEmbedder{
		SourceDir: filepath.Dir(sourcePath),
		RootDir:   c.cfg.assetRoot,
		Logger:    c.logger,
	}
	body, images, err := embedder.Embed(body)
	if err != nil {
		return "", 0, false, fmt.Errorf("embedding images: %w", err)
	}

	if c.cfg.toc != nil {
		minDepth, maxDepth := c.cfg.toc.depths()
		body, err = c.tocInjector.InjectTOC(ctx, body, &pipeline.TOCData{
			Title:      c.cfg.toc.Title,
			MinDepth:   minDepth,
			MaxDepth:   maxDepth,
			MarkerOnly: c.cfg.toc.MarkerOnly,
		})
		if err != nil {
			return "", 0, false, fmt.Errorf("injecting TOC: %w", err)
		}
	}

	hasDiagrams := pipeline.HasDiagrams(body)
	page, err := c.template.Render(assets.DocumentData{
		Title:      documentTitle(content, sourcePath),
		CSS:        c.css,
		Body:       body,
		Mermaid:    hasDiagrams,
		MermaidURL: c.cfg.mermaidURL,
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("%w: %v", assets.ErrTemplateRender, err)
	}

	page = c.cssInjector.InjectCSS(ctx, page, c.cfg.extraCSS)
	return page, images, hasDiagrams, nil
}

// documentTitle prefers the metadata title and falls back to the file name.
func documentTitle(content, sourcePath string) string {
	if title := metadata.Extract(content).String("title"); title != "" {
		return title
	}
	return strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
