package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/droidbridge/droidbridge/internal/security"
)

// Dispatch defaults, overridable through Config.
const (
	DefaultRatePerSecond   = 10
	DefaultMaxPayloadBytes = 10 * 1024

	// UnknownTemplateID is the fallback caller identity when no card or
	// template is available. All anonymous callers share one budget.
	UnknownTemplateID = "unknown"

	// templateFingerprintLen truncates the template hash for bucketing.
	templateFingerprintLen = 16
)

// Metrics receives dispatch outcome counts. Implementations live at the
// transport layer; a nil Metrics disables counting.
type Metrics interface {
	CommandReceived()
	ResponseSent(status string)
	RateLimited()
	Dropped(reason string)
}

// Config wires a Router. Registry and Limiter are required.
type Config struct {
	Registry *Registry
	Limiter  *security.Limiter
	Audit    *security.AuditLogger
	Logger   *slog.Logger
	Metrics  Metrics

	// RatePerSecond caps calls per template and function. Zero means
	// DefaultRatePerSecond.
	RatePerSecond float64

	// MaxPayloadBytes caps the args segment before parsing. Zero means
	// DefaultMaxPayloadBytes.
	MaxPayloadBytes int

	// TemplateSource returns the question-template text of the card under
	// review. A false return falls back to UnknownTemplateID.
	TemplateSource func() (string, bool)
}

/// Router runs the dispatch pipeline for inbound command strings: parse,
// fingerprint, rate check, lookup, size check, argument decode, invoke,
// callback delivery. Every per-call failure is recovered locally; nothing
// propagates to the caller.
type Router struct {
	registry        *Registry
	limiter         *security.Limiter
	audit           *security.AuditLogger
	logger          *slog.Logger
	metrics         Metrics
	ratePerSecond   float64
	maxPayloadBytes int
	templateSource  func() (string, bool)
}

// NewRouter creates a router from the given configuration.
func NewRouter(cfg Config) *Router {
	r := &Router{
		registry:        cfg.Registry,
		limiter:         cfg.Limiter,
		audit:           cfg.Audit,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		ratePerSecond:   cfg.RatePerSecond,
		maxPayloadBytes: cfg.MaxPayloadBytes,
		templateSource:  cfg.TemplateSource,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.ratePerSecond <= 0 {
		r.ratePerSecond = DefaultRatePerSecond
	}
	if r.maxPayloadBytes <= 0 {
		r.maxPayloadBytes = DefaultMaxPayloadBytes
	}
	return r
}

// HandleCommand dispatches one raw wire string. It reports whether the string
// was addressed to the bridge; false means another handler should take it.
// The evaluator receives at most one callback script per call.
func (r *Router) HandleCommand(ctx context.Context, raw string, eval Evaluator) bool {
	cmd, err := ParseCommand(raw)
	if errors.Is(err, ErrNotBridgeCommand) {
		return false
	}
	if err != nil {
		// Malformed envelope: no reliable way to answer, drop silently.
		r.logger.Debug("malformed command", "raw", raw)
		r.audit.Log(security.AuditEvent{Type: security.EventProtocolError, Detail: raw})
		r.dropped("malformed")
		return true
	}

	if r.metrics != nil {
		r.metrics.CommandReceived()
	}

	templateID := r.templateID()

	if !r.limiter.Check(templateID, cmd.Function, r.ratePerSecond) {
		r.logger.Debug("rate limit exceeded", "function", cmd.Function, "template", templateID)
		r.audit.Log(security.AuditEvent{
			Type:       security.EventRateLimited,
			TemplateID: templateID,
			Function:   cmd.Function,
		})
		if r.metrics != nil {
			r.metrics.RateLimited()
		}
		r.deliver(eval, cmd.CallbackID, Failure("Rate limit exceeded"), "rate_limited")
		return true
	}

	op, ok := r.registry.Get(cmd.Function)
	if !ok {
		r.logger.Debug("unknown function", "function", cmd.Function)
		r.deliver(eval, cmd.CallbackID, Failure("Unknown API function: "+cmd.Function), "unknown_function")
		return true
	}

	r.audit.Log(security.AuditEvent{
		Type:       security.EventAPICall,
		TemplateID: templateID,
		Function:   cmd.Function,
		CallbackID: cmd.CallbackID,
	})

	result, err := r.invoke(ctx, op, cmd)
	if err != nil {
		r.logger.Debug("operation failed", "function", cmd.Function, "error", err.Error())
		r.audit.Log(security.AuditEvent{
			Type:       security.EventOperationError,
			TemplateID: templateID,
			Function:   cmd.Function,
			Detail:     err.Error(),
		})
		r.deliver(eval, cmd.CallbackID, Failure(UserMessage(err)), "error")
		return true
	}

	r.deliver(eval, cmd.CallbackID, Success(result), "ok")
	return true
}

// invoke runs size check, argument decode, schema binding, and the handler.
// A panicking handler surfaces as InternalError instead of unwinding the
// dispatch loop.
func (r *Router) invoke(ctx context.Context, op Operation, cmd Command) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = Errorf(KindInternalError, "panic in %s: %v", op.Name, p)
		}
	}()

	if len(cmd.ArgsJSON) > r.maxPayloadBytes {
		r.audit.Log(security.AuditEvent{
			Type:     security.EventPayloadRejected,
			Function: cmd.Function,
		})
		return nil, Errorf(KindValueError, "payload too large: %d bytes", len(cmd.ArgsJSON))
	}

	var decoded any
	if jsonErr := json.Unmarshal([]byte(cmd.ArgsJSON), &decoded); jsonErr != nil {
		return nil, NewError(KindValueError, jsonErr)
	}

	args, bindErr := bindArgs(op, decoded)
	if bindErr != nil {
		return nil, bindErr
	}

	return op.Handler(ctx, args)
}

// deliver validates the callback id and hands the rendered script to the
// evaluator. Invalid ids drop the response entirely.
func (r *Router) deliver(eval Evaluator, callbackID string, response any, status string) {
	if !ValidCallbackID(callbackID) {
		r.logger.Debug("invalid callback id", "callback_id", callbackID)
		r.audit.Log(security.AuditEvent{
			Type:       security.EventCallbackDropped,
			CallbackID: callbackID,
		})
		r.dropped("invalid_callback_id")
		return
	}

	script, err := CallbackScript(callbackID, response)
	if err != nil {
		// Non-serializable result; operations promise JSON-safe values, so
		// this only guards against handler bugs.
		r.logger.Debug("response encoding failed", "error", err.Error())
		r.dropped("encode_error")
		return
	}

	if r.metrics != nil {
		r.metrics.ResponseSent(status)
	}
	eval.Eval(script)
}

func (r *Router) dropped(reason string) {
	if r.metrics != nil {
		r.metrics.Dropped(reason)
	}
}

// templateID derives the caller identity from the current question template.
func (r *Router) templateID() string {
	if r.templateSource == nil {
		return UnknownTemplateID
	}
	content, ok := r.templateSource()
	if !ok {
		return UnknownTemplateID
	}
	return security.TemplateHash(content)[:templateFingerprintLen]
}
