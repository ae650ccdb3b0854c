package blogbook

// Notes:
// - The browser is replaced by mockRenderer through withRenderer; the real
//   rod renderer needs Chrome and is not exercised here.
// - Assets come from the embedded loader, so NewConverter succeeds without
//   any files on disk.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-blogbook/internal/assets"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockRenderer struct {
	mu       sync.Mutex
	output   []byte
	degraded bool
	err      error
	panicMsg string
	calls    []pdfOptions
	pages    []string
	closed   bool
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) (*renderOutput, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	page, _ := os.ReadFile(filePath)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *opts)
	m.pages = append(m.pages, string(page))
	if m.err != nil {
		return nil, m.err
	}
	out := m.output
	if out == nil {
		out = []byte("%PDF-1.4 mock")
	}
	return &renderOutput{PDF: out, Degraded: m.degraded}, nil
}

func (m *mockRenderer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func newTestConverter(t *testing.T, r pdfRenderer, opts ...Option) *Converter {
	t.Helper()
	conv, err := NewConverter(append([]Option{withRenderer(r)}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestNewConverter - Option validation
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name: "defaults",
		},
		{
			name: "TOC disabled",
			opts: []Option{WithTOC(nil)},
		},
		{
			name:    "TOC min above max",
			opts:    []Option{WithTOC(&TOC{MinDepth: 4, MaxDepth: 2})},
			wantErr: ErrInvalidTOCDepth,
		},
		{
			name:    "TOC depth out of range",
			opts:    []Option{WithTOC(&TOC{MaxDepth: 9})},
			wantErr: ErrInvalidTOCDepth,
		},
		{
			name:    "unknown style",
			opts:    []Option{WithStyle("no-such-style")},
			wantErr: assets.ErrStyleNotFound,
		},
		{
			name:    "unknown template",
			opts:    []Option{WithTemplate("no-such-template")},
			wantErr: assets.ErrTemplateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(append([]Option{withRenderer(&mockRenderer{})}, tt.opts...)...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewConverter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter() error = %v", err)
			}
			_ = conv.Close()
		})
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}

func TestWithDiagramTimeout_PanicsOnNegative(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithDiagramTimeout(-1) did not panic")
		}
	}()
	WithDiagramTimeout(-time.Second)
}

// ---------------------------------------------------------------------------
// TestConverter_RenderDocument - End-to-end with a mock browser
// ---------------------------------------------------------------------------

func TestConverter_RenderDocument(t *testing.T) {
	t.Parallel()

	t.Run("writes PDF under nested output path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "post.md", "# Post\n\n## Section\n\nBody.\n")
		out := filepath.Join(dir, "pdf", "nested", "post.pdf")

		r := &mockRenderer{output: []byte("%PDF-1.7 data")}
		conv := newTestConverter(t, r)
		defer conv.Close()

		res, err := conv.RenderDocument(context.Background(), src, out)
		if err != nil {
			t.Fatalf("RenderDocument() error = %v", err)
		}
		if res.Path != out {
			t.Errorf("Path = %q, want %q", res.Path, out)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if string(got) != "%PDF-1.7 data" {
			t.Errorf("output = %q", got)
		}
		if res.Degraded {
			t.Error("Degraded = true, want false")
		}
		if len(r.calls) != 1 || r.calls[0].WaitForDiagrams {
			t.Errorf("renderer calls = %+v, want one call without diagram wait", r.calls)
		}
		if !strings.Contains(r.pages[0], `<h2 id="section"`) {
			t.Errorf("page missing rendered heading: %s", r.pages[0])
		}
	})

	t.Run("diagrams request the wait and propagate degradation", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "flow.md", "# Flow\n\n```mermaid\ngraph TD; A-->B\n```\n")
		r := &mockRenderer{degraded: true}
		conv := newTestConverter(t, r, WithDiagramTimeout(3*time.Second))
		defer conv.Close()

		res, err := conv.RenderDocument(context.Background(), src, filepath.Join(dir, "flow.pdf"))
		if err != nil {
			t.Fatalf("RenderDocument() error = %v", err)
		}
		if !res.Degraded {
			t.Error("Degraded = false, want true")
		}
		if !r.calls[0].WaitForDiagrams || r.calls[0].DiagramTimeout != 3*time.Second {
			t.Errorf("pdfOptions = %+v", r.calls[0])
		}
		if !strings.Contains(r.pages[0], assets.DefaultMermaidURL) {
			t.Error("page does not load the diagram runtime")
		}
	})

	t.Run("embeds local images", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeSource(t, dir, "img/dot.png", "\x89PNG\r\n\x1a\n")
		src := writeSource(t, dir, "pic.md", "![dot](img/dot.png)\n")
		r := &mockRenderer{}
		conv := newTestConverter(t, r)
		defer conv.Close()

		res, err := conv.RenderDocument(context.Background(), src, filepath.Join(dir, "pic.pdf"))
		if err != nil {
			t.Fatalf("RenderDocument() error = %v", err)
		}
		if res.Images != 1 {
			t.Errorf("Images = %d, want 1", res.Images)
		}
		if !strings.Contains(r.pages[0], "data:image/png;base64,iVBORw0KGgo=") {
			t.Error("page does not carry the embedded image")
		}
	})

	t.Run("renderer failure wraps sentinels", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A\n")
		conv := newTestConverter(t, &mockRenderer{err: ErrPageLoad})
		defer conv.Close()

		_, err := conv.RenderDocument(context.Background(), src, filepath.Join(dir, "a.pdf"))
		if !errors.Is(err, ErrConversion) || !errors.Is(err, ErrPageLoad) {
			t.Errorf("error = %v, want ErrConversion and ErrPageLoad", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		conv := newTestConverter(t, &mockRenderer{})
		defer conv.Close()

		_, err := conv.RenderDocument(context.Background(), filepath.Join(dir, "gone.md"), filepath.Join(dir, "gone.pdf"))
		if !errors.Is(err, ErrConversion) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want ErrConversion and os.ErrNotExist", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A\n")
		conv := newTestConverter(t, &mockRenderer{})
		defer conv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := conv.RenderDocument(ctx, src, filepath.Join(dir, "a.pdf"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("renderer panic is recovered", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A\n")
		conv := newTestConverter(t, &mockRenderer{panicMsg: "boom"})
		defer conv.Close()

		_, err := conv.RenderDocument(context.Background(), src, filepath.Join(dir, "a.pdf"))
		if !errors.Is(err, ErrConversion) || !strings.Contains(err.Error(), "boom") {
			t.Errorf("error = %v, want recovered ErrConversion", err)
		}
	})
}

func TestConverter_Render(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeSource(t, dir, "a.md", "# A\n")
	out := filepath.Join(dir, "a.pdf")
	conv := newTestConverter(t, &mockRenderer{})
	defer conv.Close()

	got, err := conv.Render(context.Background(), src, out)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != out {
		t.Errorf("Render() = %q, want %q", got, out)
	}
}

// ---------------------------------------------------------------------------
// TestConverter_RenderHTML - Page assembly
// ---------------------------------------------------------------------------

func TestConverter_RenderHTML(t *testing.T) {
	t.Parallel()

	t.Run("title from metadata and TOC at top", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "singleton.md",
			"<!--\ntitle: \"The Singleton\"\n-->\n# Singleton\n\n## Intent\n\n## Structure\n")
		r := &mockRenderer{}
		conv := newTestConverter(t, r, WithTOC(&TOC{Title: "Contents"}))
		defer conv.Close()

		page, err := conv.RenderHTML(context.Background(), src)
		if err != nil {
			t.Fatalf("RenderHTML() error = %v", err)
		}
		if !strings.Contains(page, "<title>The Singleton</title>") {
			t.Error("page title not taken from metadata")
		}
		if !strings.Contains(page, "Contents") || !strings.Contains(page, `href="#intent"`) {
			t.Error("page missing generated TOC")
		}
		if len(r.calls) != 0 {
			t.Error("RenderHTML must not print")
		}
	})

	t.Run("title falls back to file name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "factory-method.md", "Plain body.\n")
		conv := newTestConverter(t, &mockRenderer{}, WithTOC(nil))
		defer conv.Close()

		page, err := conv.RenderHTML(context.Background(), src)
		if err != nil {
			t.Fatalf("RenderHTML() error = %v", err)
		}
		if !strings.Contains(page, "<title>factory-method</title>") {
			t.Errorf("unexpected title in %s", page)
		}
	})

	t.Run("extra CSS lands in head", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A\n")
		conv := newTestConverter(t, &mockRenderer{}, WithExtraCSS("body{color:red}"))
		defer conv.Close()

		page, err := conv.RenderHTML(context.Background(), src)
		if err != nil {
			t.Fatalf("RenderHTML() error = %v", err)
		}
		head, _, _ := strings.Cut(page, "</head>")
		if !strings.Contains(head, "body{color:red}") {
			t.Error("extra CSS not injected into head")
		}
	})
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	r := &mockRenderer{}
	conv := newTestConverter(t, r)
	if err := conv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !r.closed {
		t.Error("renderer not closed")
	}
}
