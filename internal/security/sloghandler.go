package security

import (
	"context"
	"log/slog"
)

// RedactingHandler wraps a slog.Handler and runs SanitizeForLogging over the
// message and every string-valued attribute before passing the record on.
// Log calls anywhere in the bridge go through it, so template content cannot
// leak into persistent logs regardless of where the call originates.
type RedactingHandler struct {
	inner     slog.Handler
	maxLength int
	attrs     []slog.Attr
}

// Compile-time check.
var _ slog.Handler = (*RedactingHandler)(nil)

// NewRedactingHandler creates a handler that wraps inner. maxLength bounds
// every sanitized string; <= 0 means MaxLogMessageLength.
func NewRedactingHandler(inner slog.Handler, maxLength int) *RedactingHandler {
	if maxLength <= 0 {
		maxLength = MaxLogMessageLength
	}
	return &RedactingHandler{inner: inner, maxLength: maxLength}
}

// Enabled delegates to the inner handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes, then delegates.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	sanitized := slog.NewRecord(record.Time, record.Level, SanitizeForLogging(record.Message, h.maxLength), record.PC)

	sanitized.AddAttrs(h.attrs...)

	record.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.inner.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with pre-sanitized attributes.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &RedactingHandler{
		inner:     h.inner.WithAttrs(sanitized),
		maxLength: h.maxLength,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:     h.inner.WithGroup(name),
		maxLength: h.maxLength,
		attrs:     h.attrs,
	}
}

// sanitizeAttr recursively sanitizes string values in an attribute.
func (h *RedactingHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	// Resolve first so LogValuer, error, and fmt.Stringer values reach their
	// final string form before sanitization.
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(SanitizeForLogging(a.Value.String(), h.maxLength))
	case slog.KindGroup:
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		a.Value = slog.GroupValue(sanitized...)
	case slog.KindAny:
		resolved := a.Value.String()
		sanitized := SanitizeForLogging(resolved, h.maxLength)
		if sanitized != resolved {
			a.Value = slog.StringValue(sanitized)
		}
	}
	return a
}
