package security

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType categorizes audit events.
type EventType string

// Audit event types covering every security-relevant bridge interaction.
const (
	EventAPICall         EventType = "api_call"
	EventRateLimited     EventType = "rate_limited"
	EventPayloadRejected EventType = "payload_rejected"
	EventProtocolError   EventType = "protocol_error"
	EventCallbackDropped EventType = "callback_dropped"
	EventOperationError  EventType = "operation_error"
)

// AuditEvent is a single audit log entry.
type AuditEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	TemplateID string    `json:"template_id,omitempty"`
	Function   string    `json:"function,omitempty"`
	CallbackID string    `json:"callback_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// AuditLoggerConfig configures the audit logger.
type AuditLoggerConfig struct {
	// Writer is the destination for JSONL output. If nil, events are only
	// dispatched to OnEvent (useful for testing).
	Writer io.Writer

	// OnEvent, if non-nil, is called for every event (used in tests).
	OnEvent func(AuditEvent)

	// Now overrides time.Now for testing. Defaults to time.Now.
	Now func() time.Time
}

// AuditLogger writes structured audit events as JSONL. Detail strings are
// sanitized before writing so template content never lands in the trail.
type AuditLogger struct {
	writer  io.Writer
	onEvent func(AuditEvent)
	now     func() time.Time
	mu      sync.Mutex
}

// NewAuditLogger creates an audit logger with the given configuration.
func NewAuditLogger(cfg AuditLoggerConfig) *AuditLogger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuditLogger{
		writer:  cfg.Writer,
		onEvent: cfg.OnEvent,
		now:     now,
	}
}

// Log writes an audit event. The timestamp is set automatically and the
// Detail field is sanitized.
func (l *AuditLogger) Log(event AuditEvent) {
	if l == nil {
		return
	}

	event.Timestamp = l.now()
	event.Detail = SanitizeForLogging(event.Detail, 0)

	// Dispatch to the test callback and write JSONL under the same lock to
	// keep ordering consistent.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onEvent != nil {
		l.onEvent(event)
	}

	if l.writer != nil {
		_ = json.NewEncoder(l.writer).Encode(event)
	}
}
