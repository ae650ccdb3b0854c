// Package metadata extracts key/value metadata embedded in Markdown documents
// and in folder-level metadata files.
//
// Documents carry metadata in their first HTML comment block:
//
//	<!--
//	title: "Singleton"
//	tags: ["creational", "gof"]
//	references: [
//	  "https://example.com/singleton",
//	]
//	-->
//
// A leading front matter block (YAML, TOML or JSON) is read as well; keys in
// the comment block take precedence.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-blogbook/internal/yamlutil"
)

// Metadata is an open key/value set. Values are strings, sequences ([]any)
// or, for front matter and folder metadata, arbitrary decoded values.
type Metadata map[string]any

// ArrayKeys lists the keys whose values are parsed as array literals.
var ArrayKeys = []string{"tags", "references"}

var (
	commentBlock = regexp.MustCompile(`(?s)<!--(.*?)-->`)
	keyValueLine = regexp.MustCompile(`^\s*([a-zA-Z]+)\s*:\s*(.+)$`)
)

// Extract parses the metadata of a document. It never fails: a missing
// comment block yields an empty set and malformed arrays yield empty sequences.
func Extract(content string) Metadata {
	meta, _ := FrontMatter(content)
	for k, v := range extractBlock(content) {
		meta[k] = v
	}
	return meta
}

// ReadFile reads and extracts the metadata of the file at path.
func ReadFile(path string) (Metadata, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the tree walk
	if err != nil {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}
	return Extract(string(data)), nil
}

// ExtractFile is ReadFile with read errors folded into an empty result.
func ExtractFile(path string) Metadata {
	meta, _ := ReadFile(path)
	return meta
}

// ParseArray parses a lenient array literal (JSON with single quotes,
// unquoted strings and trailing commas allowed). Anything that does not
// parse as a sequence yields an empty, non-nil slice.
func ParseArray(text string) []any {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") {
		return []any{}
	}
	var out []any
	if err := yamlutil.UnmarshalLenient([]byte(text), &out); err != nil || out == nil {
		return []any{}
	}
	return normalizeSlice(out)
}

// ParseFolderMeta decodes a folder metadata file. Unlike Extract it reports
// errors so callers can surface them.
func ParseFolderMeta(data []byte) (Metadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("folder metadata: %w", yamlutil.ErrNilData)
	}
	var raw map[string]any
	if err := yamlutil.UnmarshalLenient(data, &raw); err != nil {
		return nil, fmt.Errorf("folder metadata: %w", err)
	}
	meta := make(Metadata, len(raw))
	for k, v := range raw {
		meta[k] = normalize(v)
	}
	return meta, nil
}

// FrontMatter returns the front matter keys and the remaining body. Content
// without front matter, or with front matter that fails to decode, is
// returned unchanged with an empty set.
func FrontMatter(content string) (Metadata, string) {
	var raw map[string]any
	body, err := frontmatter.Parse(strings.NewReader(content), &raw)
	if err != nil {
		return Metadata{}, content
	}
	meta := make(Metadata, len(raw))
	for k, v := range raw {
		meta[k] = normalize(v)
	}
	return meta, string(body)
}

// StripFrontMatter returns content without its front matter block.
func StripFrontMatter(content string) string {
	_, body := FrontMatter(content)
	return body
}

// String returns the value at key as a string, or "" when absent or not scalar.
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns the scalar members of the sequence at key.
func (m Metadata) Strings(key string) []string {
	seq, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func isArrayKey(key string) bool {
	for _, k := range ArrayKeys {
		if k == key {
			return true
		}
	}
	return false
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// normalize converts nested maps with non-string keys (as produced by some
// YAML decoders) so every value is JSON-encodable.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		return normalizeSlice(t)
	default:
		return v
	}
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = normalize(v)
	}
	return out
}
