package pipeline

import (
	"context"
	"strings"
)

// CSSInjector adds user stylesheets to a rendered page.
type CSSInjector interface {
	InjectCSS(ctx context.Context, page, css string) string
}

// CSSInjection places extra CSS after the page's built-in stylesheet so its
// rules win.
type CSSInjection struct{}

// InjectCSS inserts css as a <style> element before </head>, else right
// after <body>, else at the start of page.
func (CSSInjection) InjectCSS(ctx context.Context, page, css string) string {
	if css == "" || ctx.Err() != nil {
		return page
	}

	style := "<style>" + sanitizeCSS(css) + "</style>"
	if i := strings.Index(strings.ToLower(page), "</head>"); i >= 0 {
		return page[:i] + style + page[i:]
	}
	return insertAfterBody(page, style)
}

// sanitizeCSS keeps css from closing its own <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// insertAfterBody inserts fragment just past the opening <body> tag, or
// prepends it when page has none.
func insertAfterBody(page, fragment string) string {
	start := strings.Index(strings.ToLower(page), "<body")
	if start < 0 {
		return fragment + page
	}
	end := strings.IndexByte(page[start:], '>')
	if end < 0 {
		return fragment + page
	}
	at := start + end + 1
	return page[:at] + fragment + page[at:]
}

var _ CSSInjector = (*CSSInjection)(nil)
