package bridge

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func noopHandler(ctx context.Context, args Args) (any, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Operation{Name: "ankiGetCardId", Handler: noopHandler}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, ok := r.Get("ankiGetCardId"); !ok {
		t.Fatal("registered operation not found")
	}
	if _, ok := r.Get("ankigetcardid"); ok {
		t.Fatal("lookup should be case-sensitive")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	op := Operation{Name: "ankiMarkCard", Handler: noopHandler}
	if err := r.Register(op); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if err := r.Register(op); !errors.Is(err, ErrDuplicateOperation) {
		t.Fatalf("expected ErrDuplicateOperation, got %v", err)
	}
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Operation{Name: "  ", Handler: noopHandler}); !errors.Is(err, ErrEmptyOperationName) {
		t.Fatalf("expected ErrEmptyOperationName, got %v", err)
	}
	if err := r.Register(Operation{Name: "broken"}); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(Operation{Name: name, Handler: noopHandler}); err != nil {
			t.Fatalf("Register(%q) returned error: %v", name, err)
		}
	}

	got := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestBindArgs(t *testing.T) {
	t.Parallel()

	op := Operation{Name: "op", Params: []string{"text", "short"}, Handler: noopHandler}

	// Object binds by name.
	args, err := bindArgs(op, map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("bindArgs returned error: %v", err)
	}
	if v, ok := args.Arg("text"); !ok || v != "hi" {
		t.Fatalf("Arg(text) = %v, %v", v, ok)
	}
	if _, ok := args.Arg("short"); ok {
		t.Fatal("unset named argument should not resolve")
	}

	// Scalar binds to the first parameter only.
	args, err = bindArgs(op, "hello")
	if err != nil {
		t.Fatalf("bindArgs returned error: %v", err)
	}
	if v, ok := args.Arg("text"); !ok || v != "hello" {
		t.Fatalf("positional Arg(text) = %v, %v", v, ok)
	}
	if _, ok := args.Arg("short"); ok {
		t.Fatal("positional value must not answer for later parameters")
	}

	// Unexpected keyword is a TypeError.
	_, err = bindArgs(op, map[string]any{"bogus": 1})
	if KindOf(err) != KindTypeError {
		t.Fatalf("unexpected keyword: kind = %v, want TypeError", KindOf(err))
	}

	// Positional value for a zero-parameter operation is a TypeError.
	bare := Operation{Name: "bare", Handler: noopHandler}
	_, err = bindArgs(bare, float64(3))
	if KindOf(err) != KindTypeError {
		t.Fatalf("positional on zero-arg op: kind = %v, want TypeError", KindOf(err))
	}

	// An array is one positional argument, not a spread.
	args, err = bindArgs(op, []any{"a", "b"})
	if err != nil {
		t.Fatalf("bindArgs returned error: %v", err)
	}
	v, ok := args.Arg("text")
	if !ok {
		t.Fatal("array should bind to the first parameter")
	}
	if _, isSlice := v.([]any); !isSlice {
		t.Fatalf("array argument = %T, want []any", v)
	}
}
