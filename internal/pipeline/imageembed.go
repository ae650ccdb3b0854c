package pipeline

import (
	"encoding/base64"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-blogbook/internal/fileutil"
)

// rasterMIME lists the raster formats embedded as data URIs.
var rasterMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// xmlProlog matches declarations that are not valid inside an HTML body.
var xmlProlog = regexp.MustCompile(`(?s)<\?xml.*?\?>|<!DOCTYPE[^>]*>`)

// ImageEmbedder inlines local images referenced by img[src] so the page is
// self-contained when printed.
type ImageEmbedder struct {
	// SourceDir resolves relative sources (the document's directory).
	SourceDir string
	// RootDir bounds resolution; sources escaping it are left untouched.
	// Empty means SourceDir.
	RootDir string
	Logger  *slog.Logger
}

// EmbedImages inlines the images of htmlContent relative to sourceDir.
func EmbedImages(htmlContent, sourceDir string) (string, error) {
	e := &ImageEmbedder{SourceDir: sourceDir}
	out, _, err := e.Embed(htmlContent)
	return out, err
}

// Embed rewrites htmlContent and reports how many images were inlined.
//
// Rasters become data:<mime>;base64 URIs. SVG images are replaced by
// <div role="img" aria-label="alt"> holding the vector markup. Remote, data:
// and absolute sources, unknown extensions and missing files are left as is.
func (e *ImageEmbedder) Embed(htmlContent string) (string, int, error) {
	if e.SourceDir == "" || !strings.Contains(htmlContent, "<img") {
		return htmlContent, 0, nil
	}

	sourceDir, err := filepath.Abs(e.SourceDir)
	if err != nil {
		return "", 0, err
	}
	rootDir := sourceDir
	if e.RootDir != "" {
		if rootDir, err = filepath.Abs(e.RootDir); err != nil {
			return "", 0, err
		}
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", 0, err
	}

	var imgs []*html.Node
	collectImages(doc, &imgs)

	count := 0
	for _, img := range imgs {
		if e.embedOne(img, sourceDir, rootDir) {
			count++
		}
	}
	if count == 0 {
		return htmlContent, 0, nil
	}

	out, err := renderHTML(doc, isFragment)
	return out, count, err
}

func (e *ImageEmbedder) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func collectImages(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectImages(c, out)
	}
}

func (e *ImageEmbedder) embedOne(img *html.Node, sourceDir, rootDir string) bool {
	src := attr(img, "src")
	if !isRelativePath(src) {
		return false
	}

	absPath := filepath.Join(sourceDir, filepath.FromSlash(localPath(src)))
	if !isPathUnderDir(absPath, rootDir) {
		e.logger().Warn("image outside content root left unchanged", "src", src)
		return false
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if ext != ".svg" && rasterMIME[ext] == "" {
		return false
	}
	if !fileutil.FileExists(absPath) {
		e.logger().Warn("image not found", "src", src, "path", absPath)
		return false
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- path checked against the content root above
	if err != nil {
		e.logger().Warn("failed to embed image", "src", src, "error", err)
		return false
	}

	if ext == ".svg" {
		return replaceWithSVG(img, attr(img, "alt"), string(data))
	}

	setAttr(img, "src", "data:"+rasterMIME[ext]+";base64,"+base64.StdEncoding.EncodeToString(data))
	return true
}

// replaceWithSVG swaps img for a div carrying the parsed SVG markup.
func replaceWithSVG(img *html.Node, alt, markup string) bool {
	if img.Parent == nil {
		return false
	}
	div := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr: []html.Attribute{
			{Key: "role", Val: "img"},
			{Key: "aria-label", Val: alt},
		},
	}

	nodes, err := html.ParseFragment(strings.NewReader(strings.TrimSpace(xmlProlog.ReplaceAllString(markup, ""))), div)
	if err != nil {
		return false
	}
	for _, n := range nodes {
		div.AppendChild(n)
	}

	img.Parent.InsertBefore(div, img)
	img.Parent.RemoveChild(img)
	return true
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string. Fragments render only
// their children so no <html><body> wrapper is added.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// isRelativePath returns true for sources that resolve against the document.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if fileutil.IsURL(path) || strings.HasPrefix(path, "file://") || strings.HasPrefix(path, "data:") {
		return false
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// localPath drops any query or fragment and decodes percent escapes.
func localPath(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	if decoded, err := url.PathUnescape(src); err == nil {
		return decoded
	}
	return src
}
