package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/alnah/go-blogbook/internal/metadata"
)

// Highlight placeholders use Unicode Private Use Area characters so they
// pass through Goldmark unchanged. ConvertMarkPlaceholders turns them into
// <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)

	// leadingMetadata matches the metadata comment when it opens the document.
	leadingMetadata = regexp.MustCompile(`\A\s*<!--(?s:.*?)-->[ \t]*\n?`)
	fencedCode      = regexp.MustCompile("(?s)```.*?```")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown strips front matter and the leading metadata block,
// normalizes line endings, converts ==highlights== and compresses blank lines.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = metadata.StripFrontMatter(content)
	content = stripMetadataBlock(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

func stripMetadataBlock(content string) string {
	return leadingMetadata.ReplaceAllString(content, "")
}

// convertHighlights transforms ==text== to placeholder markers outside
// fenced code blocks.
func convertHighlights(content string) string {
	var b strings.Builder
	last := 0
	for _, loc := range fencedCode.FindAllStringIndex(content, -1) {
		b.WriteString(highlightPattern.ReplaceAllString(content[last:loc[0]], MarkStartPlaceholder+"$1"+MarkEndPlaceholder))
		b.WriteString(content[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(highlightPattern.ReplaceAllString(content[last:], MarkStartPlaceholder+"$1"+MarkEndPlaceholder))
	return b.String()
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
