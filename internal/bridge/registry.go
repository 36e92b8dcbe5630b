package bridge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry errors.
var (
	ErrEmptyOperationName = errors.New("empty operation name")
	ErrNilHandler         = errors.New("nil operation handler")
	ErrDuplicateOperation = errors.New("operation already registered")
	ErrOperationNotFound  = errors.New("unknown operation")
)

// Handler executes one registered operation against already-bound arguments.
type Handler func(ctx context.Context, args Args) (any, error)

// Operation declares a callable operation and its argument schema. Params
// lists the accepted argument names in call order; arguments outside the
// schema are rejected before the handler runs.
type Operation struct {
	Name    string
	Params  []string
	Handler Handler
}

// Args carries the decoded JSON arguments of one call. A JSON object becomes
// named arguments; any other JSON value becomes a single positional argument
// bound to the operation's first declared parameter.
type Args struct {
	named      map[string]any
	value      any
	positional bool
	firstParam string
}

// NamedArgs builds Args from a decoded JSON object.
func NamedArgs(m map[string]any) Args {
	return Args{named: m}
}

// PositionalArg builds Args from a single non-object JSON value bound to the
// parameter named first.
func PositionalArg(first string, v any) Args {
	return Args{value: v, positional: true, firstParam: first}
}

// Arg returns the value bound to the named parameter. For positional calls
// only the operation's first parameter answers; the rest stay unset.
func (a Args) Arg(name string) (any, bool) {
	if a.positional {
		if name == a.firstParam {
			return a.value, true
		}
		return nil, false
	}
	v, ok := a.named[name]
	return v, ok
}

// IsEmpty reports whether the call carried no arguments at all.
func (a Args) IsEmpty() bool {
	return !a.positional && len(a.named) == 0
}

// Registry maps operation names to their implementations. It is populated
// once at startup and read-only afterwards; the lock exists because the
// gateway dispatches from per-connection goroutines.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds an operation. Names are case-sensitive and must be unique.
func (r *Registry) Register(op Operation) error {
	name := strings.TrimSpace(op.Name)
	if name == "" {
		return ErrEmptyOperationName
	}
	if op.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOperation, name)
	}
	r.ops[name] = op
	return nil
}

// MustRegister registers an operation and panics on error. Registration runs
// once at startup, so a failure is a programming mistake.
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Get returns the operation with the given name.
func (r *Registry) Get(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Names returns all registered operation names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// bindArgs checks a decoded JSON value against the operation's declared
// schema and wraps it as Args. Shape mismatches surface as TypeError, the
// same category a blind keyword splat would have produced.
func bindArgs(op Operation, decoded any) (Args, error) {
	if m, ok := decoded.(map[string]any); ok {
		for key := range m {
			if !slices.Contains(op.Params, key) {
				return Args{}, Errorf(KindTypeError, "%s: unexpected argument %q", op.Name, key)
			}
		}
		return NamedArgs(m), nil
	}

	if len(op.Params) == 0 {
		return Args{}, Errorf(KindTypeError, "%s takes no arguments", op.Name)
	}
	return PositionalArg(op.Params[0], decoded), nil
}
