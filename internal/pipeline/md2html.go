package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/mermaid"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// diagramMarker identifies diagram blocks left for client-side rendering.
const diagramMarker = `class="mermaid"`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkOptions tunes the goldmark pipeline.
type GoldmarkOptions struct {
	// RawHTML passes inline HTML in the Markdown through to the output.
	RawHTML bool
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with GFM, footnotes, syntax
// highlighting and diagram blocks.
func NewGoldmarkConverter(opts GoldmarkOptions) *GoldmarkConverter {
	rendererOpts := []renderer.Option{
		html.WithHardWraps(), // Treat newlines as <br>
		html.WithXHTML(),
	}
	if opts.RawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
			// Client mode emits <pre class="mermaid">; the document template
			// loads the runtime and the renderer waits for the SVG.
			&mermaid.Extender{
				RenderMode: mermaid.RenderModeClient,
				NoScript:   true,
			},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Required for TOC anchors
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment. Goldmark has no
// context support, so conversion runs in a goroutine raced against ctx.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// HasDiagrams reports whether htmlContent contains diagram blocks that need
// the browser-side renderer.
func HasDiagrams(htmlContent string) bool {
	return strings.Contains(htmlContent, diagramMarker)
}

var _ HTMLConverter = (*GoldmarkConverter)(nil)
