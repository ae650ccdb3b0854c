package pipeline

import (
	"context"
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCData configures the generated table of contents.
type TOCData struct {
	Title    string
	MinDepth int // shallowest heading level listed
	MaxDepth int // deepest heading level listed
	// MarkerOnly disables insertion at the top when no marker is present.
	MarkerOnly bool
}

// DefaultTOC lists h2 through h6, leaving the document title out.
func DefaultTOC() *TOCData {
	return &TOCData{MinDepth: 2, MaxDepth: 6}
}

// TOCInjector adds a table of contents to a rendered body.
type TOCInjector interface {
	InjectTOC(ctx context.Context, body string, data *TOCData) (string, error)
}

// tocMarker matches a paragraph holding only a [[toc]] or ${toc} marker.
var tocMarker = regexp.MustCompile(`(?i)<p>\s*(?:\[\[toc\]\]|\$\{toc\})\s*</p>\n?`)

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// heading is an anchored heading found in the body.
type heading struct {
	level int
	id    string
	text  string
}

// tocEntry is a heading with the headings nested under it.
type tocEntry struct {
	heading
	children []*tocEntry
}

// collectHeadings returns the headings within [minDepth, maxDepth] that
// carry an id, in document order. Inline markup is dropped from the text.
func collectHeadings(body string, minDepth, maxDepth int) []heading {
	var (
		out     []heading
		current *heading
		text    strings.Builder
	)
	z := xhtml.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return out
		case xhtml.StartTagToken:
			tok := z.Token()
			level, ok := headingLevels[tok.DataAtom]
			if !ok || current != nil || level < minDepth || level > maxDepth {
				continue
			}
			for _, a := range tok.Attr {
				if a.Key == "id" && a.Val != "" {
					current = &heading{level: level, id: a.Val}
					text.Reset()
				}
			}
		case xhtml.TextToken:
			if current != nil {
				text.Write(z.Text())
			}
		case xhtml.EndTagToken:
			if current == nil {
				continue
			}
			if name, _ := z.TagName(); headingLevels[atom.Lookup(name)] == current.level {
				current.text = strings.Join(strings.Fields(text.String()), " ")
				out = append(out, *current)
				current = nil
			}
		}
	}
}

// nestHeadings turns a flat heading list into a forest. A heading becomes a
// child of the nearest preceding heading with a lower level, so skipped
// levels do not create empty intermediate entries.
func nestHeadings(headings []heading) []*tocEntry {
	var roots []*tocEntry
	var stack []*tocEntry
	for _, h := range headings {
		entry := &tocEntry{heading: h}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, entry)
		}
		stack = append(stack, entry)
	}
	return roots
}

// renderTOC writes entries as nested ordered lists inside a nav element.
func renderTOC(entries []*tocEntry, title string) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<nav class="table-of-contents">`)
	if title != "" {
		b.WriteString(`<p class="toc-title">` + html.EscapeString(title) + `</p>`)
	}
	writeTOCList(&b, entries)
	b.WriteString(`</nav>`)
	return b.String()
}

func writeTOCList(b *strings.Builder, entries []*tocEntry) {
	b.WriteString("<ol>")
	for _, e := range entries {
		b.WriteString(`<li><a href="#` + html.EscapeString(e.id) + `">` + html.EscapeString(e.text) + `</a>`)
		if len(e.children) > 0 {
			writeTOCList(b, e.children)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
}

// TOCInjection implements TOCInjector.
type TOCInjection struct{}

// NewTOCInjection returns a TOC injector.
func NewTOCInjection() *TOCInjection {
	return &TOCInjection{}
}

// InjectTOC replaces the first [[toc]] marker paragraph with the table of
// contents and removes any later markers. Without a marker the TOC goes at
// the top of the body unless MarkerOnly is set. A nil data is a no-op.
func (t *TOCInjection) InjectTOC(ctx context.Context, body string, data *TOCData) (string, error) {
	if data == nil {
		return body, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	toc := renderTOC(nestHeadings(collectHeadings(body, data.MinDepth, data.MaxDepth)), data.Title)

	if loc := tocMarker.FindStringIndex(body); loc != nil {
		return body[:loc[0]] + toc + tocMarker.ReplaceAllString(body[loc[1]:], ""), nil
	}
	if toc == "" || data.MarkerOnly {
		return body, nil
	}
	return insertAfterBody(body, toc), nil
}

var _ TOCInjector = (*TOCInjection)(nil)
