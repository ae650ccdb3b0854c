// Package dateutil provides date format parsing utilities.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// Formats used for file nodes in the content tree.
const (
	HumanFormat    = "MMMM D, YYYY"
	SortableFormat = "YYYY-MM-DD HH:mm:ss"
)

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching. Matching is
// case-sensitive: MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     HumanFormat,
	"sortable": SortableFormat,
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Any non-token characters outside brackets are preserved as literals.
// A preset name (iso, european, us, long, sortable) is expanded first.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Format renders t with a user-friendly format string.
func Format(t time.Time, format string) (string, error) {
	goFmt, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

// Stamp holds both renderings of a file timestamp.
type Stamp struct {
	Human    string
	Sortable string
}

// Stamper formats timestamps with fixed, pre-parsed layouts.
type Stamper struct {
	human    string
	sortable string
}

// NewStamper parses both formats once. Empty formats fall back to
// HumanFormat and SortableFormat.
func NewStamper(human, sortable string) (*Stamper, error) {
	if human == "" {
		human = HumanFormat
	}
	if sortable == "" {
		sortable = SortableFormat
	}
	h, err := ParseDateFormat(human)
	if err != nil {
		return nil, err
	}
	s, err := ParseDateFormat(sortable)
	if err != nil {
		return nil, err
	}
	return &Stamper{human: h, sortable: s}, nil
}

// Stamp formats t in local time.
func (s *Stamper) Stamp(t time.Time) Stamp {
	t = t.Local()
	return Stamp{Human: t.Format(s.human), Sortable: t.Format(s.sortable)}
}
