// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Configuration files, folder metadata and metadata array literals all go
// through here, so the underlying library can change without touching callers.
package yamlutil

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// trailingComma matches a comma followed only by whitespace before a closing
// bracket or brace. JSON5-style literals allow it, YAML flow collections may not.
var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalLenient decodes JSON or JSON5-like literals: unquoted keys,
// single quotes and trailing commas are accepted. YAML flow syntax is a
// superset of JSON, so only trailing commas need normalizing first.
func UnmarshalLenient(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	normalized := trailingComma.ReplaceAll(data, []byte("$1"))
	if err := yaml.Unmarshal(normalized, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
