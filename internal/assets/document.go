package assets

import (
	"bytes"
	"fmt"
	"html/template"
)

// DefaultMermaidURL is the diagram runtime loaded when a document has diagrams.
const DefaultMermaidURL = "https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"

// DocumentData feeds the document template.
type DocumentData struct {
	Title string
	CSS   string
	// Body is trusted HTML produced by the Markdown pipeline.
	Body       string
	Mermaid    bool
	MermaidURL string
}

// DocumentTemplate wraps an HTML fragment into a complete page.
type DocumentTemplate struct {
	tmpl *template.Template
}

// NewDocumentTemplate parses tmplContent.
func NewDocumentTemplate(tmplContent string) (*DocumentTemplate, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentTemplate{tmpl: tmpl}, nil
}

// LoadDocumentTemplate loads and parses a template by name through loader.
func LoadDocumentTemplate(loader AssetLoader, name string) (*DocumentTemplate, error) {
	content, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, err
	}
	return NewDocumentTemplate(content)
}

// Render executes the template.
func (d *DocumentTemplate) Render(data DocumentData) (string, error) {
	if data.Title == "" {
		data.Title = "Document"
	}
	if data.Mermaid && data.MermaidURL == "" {
		data.MermaidURL = DefaultMermaidURL
	}

	view := struct {
		Title      string
		CSS        template.CSS
		Body       template.HTML
		Mermaid    bool
		MermaidURL string
	}{
		Title:      data.Title,
		CSS:        template.CSS(data.CSS),   // #nosec G203 -- stylesheet comes from embedded or operator-provided assets
		Body:       template.HTML(data.Body), // #nosec G203 -- body is goldmark output
		Mermaid:    data.Mermaid,
		MermaidURL: data.MermaidURL,
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
