// Package pipeline implements the Markdown-to-HTML stages of document
// conversion:
//   - Markdown preprocessing (front matter and metadata comment removal,
//     line normalization, highlight syntax)
//   - Markdown to HTML conversion via Goldmark, with diagram blocks left for
//     the browser to render
//   - Local image embedding (data URIs for rasters, inline markup for SVG)
//   - Table of contents generation and CSS injection
//
// PDF generation is handled by the root blogbook package using headless
// Chrome (go-rod).
package pipeline
