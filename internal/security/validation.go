// Package security implements the validation, rate-limiting, and redaction
// layer that mediates every call crossing the JavaScript-to-host boundary.
// Card templates are untrusted; everything they send goes through here first.
package security

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input validation limits.
const (
	MaxTextLength    = 500   // text fields from templates
	MaxTextLengthTTS = 10000 // longer cap for spoken passages
	MaxTagLength     = 100
)

// Pre-compiled patterns. \p{L}\p{N}_ stands in for a Unicode-aware \w;
// filenames stay ASCII on purpose.
var (
	// DefaultTextPattern allows letters, digits, whitespace, common
	// punctuation, and the CJK quotation/punctuation marks templates use.
	DefaultTextPattern = regexp.MustCompile(`^[\p{L}\p{N}_\s.,!?;:\-'「」。、]+$`)

	filenamePattern = regexp.MustCompile(`^[\w\-]+\.\w+$`)
	tagPattern      = regexp.MustCompile(`^[\p{L}\p{N}_\-]+$`)
)

// TextOptions tunes ValidateText. The zero value means: MaxTextLength cap,
// DefaultTextPattern, newlines allowed.
type TextOptions struct {
	// MaxLength caps the raw input length in runes, checked before control
	// characters are stripped. Zero or negative means MaxTextLength.
	MaxLength int

	// Pattern is the allowed-character pattern the stripped text must fully
	// match. Nil means DefaultTextPattern.
	Pattern *regexp.Regexp

	// DisallowNewlines rejects \n and \r instead of passing them through.
	DisallowNewlines bool
}

// ValidateText validates and sanitizes a text value from the scripting
// boundary. The raw length is bounded first (cheap rejection before any
// regex work), then control characters below 0x20 are stripped (keeping
// \n and \t unless newlines are disallowed) and the remainder must fully
// match the allowed-character pattern. Returns the stripped, trimmed text.
func ValidateText(value any, opts TextOptions) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrWrongType, value)
	}

	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = MaxTextLength
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = DefaultTextPattern
	}

	if n := utf8.RuneCountInString(text); n > maxLength {
		return "", fmt.Errorf("%w: text too long: %d > %d", ErrInvalidValue, n, maxLength)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 32:
			b.WriteRune(r)
		case !opts.DisallowNewlines && (r == '\n' || r == '\t'):
			b.WriteRune(r)
		}
	}
	text = b.String()

	if !pattern.MatchString(text) {
		return "", fmt.Errorf("%w: text contains invalid characters", ErrInvalidValue)
	}

	return strings.TrimSpace(text), nil
}

// ValidateInteger coerces value to an integer and checks it against the
// inclusive range [minVal, maxVal]. JSON numbers arrive as float64 and are
// truncated toward zero; numeric strings are parsed; anything else is a
// type error.
func ValidateInteger(value any, minVal, maxVal int64) (int64, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: expected integer, got %v", ErrWrongType, v)
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expected integer, got %q", ErrWrongType, v)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrWrongType, value)
	}

	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("%w: value %d out of range [%d, %d]", ErrInvalidValue, n, minVal, maxVal)
	}
	return n, nil
}

// ValidateFloat coerces value to a float and checks it against the inclusive
// range [minVal, maxVal]. NaN never satisfies the range.
func ValidateFloat(value any, minVal, maxVal float64) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expected float, got %q", ErrWrongType, v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: expected float, got %T", ErrWrongType, value)
	}

	if !(f >= minVal && f <= maxVal) {
		return 0, fmt.Errorf("%w: value %v out of range [%v, %v]", ErrInvalidValue, f, minVal, maxVal)
	}
	return f, nil
}

// ValidateFilename accepts only simple name.ext filenames. The pattern alone
// excludes separators, but path traversal sequences are re-checked anyway
// before the name reaches a filesystem call.
func ValidateFilename(value any) (string, error) {
	name, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: filename must be a string, got %T", ErrWrongType, value)
	}

	if !filenamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: invalid filename: %s", ErrInvalidValue, name)
	}

	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: path traversal detected in filename: %s", ErrInvalidValue, name)
	}

	return name, nil
}

// ValidateTag trims and normalizes a tag name. Internal spaces become
// underscores before the character check so multi-word tags are normalized
// rather than rejected. maxLength <= 0 means MaxTagLength.
func ValidateTag(value any, maxLength int) (string, error) {
	tag, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: tag must be a string, got %T", ErrWrongType, value)
	}

	if maxLength <= 0 {
		maxLength = MaxTagLength
	}

	tag = strings.TrimSpace(tag)

	if n := utf8.RuneCountInString(tag); n > maxLength {
		return "", fmt.Errorf("%w: tag too long: %d > %d", ErrInvalidValue, n, maxLength)
	}
	if tag == "" {
		return "", fmt.Errorf("%w: tag cannot be empty", ErrInvalidValue)
	}

	tag = strings.ReplaceAll(tag, " ", "_")

	if !tagPattern.MatchString(tag) {
		return "", fmt.Errorf("%w: invalid tag characters: %s", ErrInvalidValue, tag)
	}

	return tag, nil
}
