package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxLogMessageLength bounds log output so a template cannot spam the log
// with megabyte payloads.
const MaxLogMessageLength = 100

// RedactPlaceholder replaces field values that may carry user content.
const RedactPlaceholder = "[REDACTED]"

// Pre-compiled redaction patterns. Free text, search queries, and tag lists
// are user content and must never reach persistent logs; file paths are
// stripped to their basename.
var (
	redactTextPattern  = regexp.MustCompile(`"text":\s*"[^"]*"`)
	redactQueryPattern = regexp.MustCompile(`"query":\s*"[^"]*"`)
	redactTagsPattern  = regexp.MustCompile(`"tags":\s*\[[^\]]*\]`)
	redactPathPattern  = regexp.MustCompile(`File "[^"]*[\\/]([^\\/"]+)"`)
)

// SanitizeForLogging transforms an arbitrary value into safe, bounded log
// output: known sensitive JSON fields are redacted, file paths are reduced to
// their trailing component, and the result is truncated to maxLength runes
// with a "..." marker when cut. maxLength <= 0 means MaxLogMessageLength.
func SanitizeForLogging(data any, maxLength int) string {
	s, ok := data.(string)
	if !ok {
		s = fmt.Sprintf("%v", data)
	}

	if maxLength <= 0 {
		maxLength = MaxLogMessageLength
	}

	s = redactTextPattern.ReplaceAllString(s, `"text":"`+RedactPlaceholder+`"`)
	s = redactQueryPattern.ReplaceAllString(s, `"query":"`+RedactPlaceholder+`"`)
	s = redactTagsPattern.ReplaceAllString(s, `"tags":"`+RedactPlaceholder+`"`)
	s = redactPathPattern.ReplaceAllString(s, `File "$1"`)

	if utf8.RuneCountInString(s) > maxLength {
		runes := []rune(s)
		return string(runes[:maxLength]) + "..."
	}
	return s
}

// TemplateHash returns the lowercase-hex SHA-256 digest of the template
// content. It identifies templates for rate-limit bucketing, so it must stay
// a cryptographic hash: distinct templates colliding would let one template
// starve another's call budget.
func TemplateHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
