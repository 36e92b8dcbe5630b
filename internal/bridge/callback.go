package bridge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

// callbackIDPattern admits decimal integers, optionally negative. Negative
// ids are the fire-and-forget convention: the script side ignores them, but
// the envelope still carries one.
var callbackIDPattern = regexp.MustCompile(`^-?\d+$`)

// ValidCallbackID reports whether id may be embedded into a callback script.
func ValidCallbackID(id string) bool {
	return callbackIDPattern.MatchString(id)
}

// Evaluator executes a script string inside the embedded web content. It is
// the single point where strings generated by the bridge re-enter the web
// view.
type Evaluator interface {
	Eval(script string)
}

// EvalFunc adapts a function to the Evaluator interface.
type EvalFunc func(script string)

func (f EvalFunc) Eval(script string) { f(script) }

// successResponse and errorResponse keep the result/error key present even
// for zero values: {"success":true,"result":false} must not lose its result.
type successResponse struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Success builds the wire response for a completed operation.
func Success(result any) any {
	return successResponse{Success: true, Result: result}
}

// Failure builds the wire response carrying a low-detail error message.
func Failure(message string) any {
	return errorResponse{Success: false, Error: message}
}

// CallbackScript renders the script that delivers a response to the web
// content. The callback id must already be validated; the response JSON is
// escaped to pure ASCII so the script string survives any document encoding.
func CallbackScript(callbackID string, response any) (string, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	return "window._ankidroidJsCallback(" + callbackID + ", " + escapeNonASCII(string(data)) + ");", nil
}

// escapeNonASCII rewrites every rune above 0x7F as a \uXXXX escape, using
// surrogate pairs for runes outside the basic multilingual plane. Input is
// valid JSON, so escapes land only inside string literals.
func escapeNonASCII(s string) string {
	if isASCII(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
