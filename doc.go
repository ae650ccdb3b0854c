// Package blogbook turns a directory of Markdown posts into PDF documents and
// one merged book.
//
// # Quick Start
//
// Build the content tree, then run the pipeline over it:
//
//	p, err := blogbook.NewPipeline(blogbook.PipelineConfig{
//	    ContentRoot: "blogs",
//	    OutputDir:   "pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	summary, err := p.Run(ctx, "blogs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary.MergedPath)
//
// # Conversion
//
// Each document goes through these stages:
//
//  1. Markdown preprocessing (front matter and metadata block removal, line
//     normalization, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, syntax highlighting,
//     diagram blocks)
//  3. Local image embedding (data URIs and inline SVG)
//  4. Table of contents and stylesheet injection, page template
//  5. PDF rendering via headless Chrome (go-rod), waiting for diagrams
//
// A single document can be rendered directly:
//
//	conv, err := blogbook.NewConverter(blogbook.WithDiagramTimeout(5 * time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	out, err := conv.Render(ctx, "blogs/patterns/singleton.md", "pdf/patterns/singleton.pdf")
//
// # Scheduling
//
// Documents are converted in chunks of at most PipelineConfig.Concurrency.
// Every document of a chunk runs concurrently and the next chunk starts only
// once all of them settled. A failed document never stops its siblings; it is
// reported in the Summary and left out of the merged PDF.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package blogbook
