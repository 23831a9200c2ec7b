package cslcore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Flames4fun/csl-core/schema"
)

func TestInvokerMapsPlainInput(t *testing.T) {
	verifier := allowAll()
	iv := NewInvoker(verifier)

	if err := iv.RunGuard(context.Background(), "hello", nil); err != nil {
		t.Fatalf("RunGuard() error = %v", err)
	}

	want := map[string]any{InputKey: "hello"}
	if got := verifier.lastContext(); !reflect.DeepEqual(got, want) {
		t.Errorf("evaluated context = %v, want %v", got, want)
	}
}

func TestInvokerMapsMapInput(t *testing.T) {
	verifier := allowAll()
	iv := NewInvoker(verifier)

	input := map[string]any{"amount": 500.0, "recipient": "alice"}
	if err := iv.RunGuard(context.Background(), input, nil); err != nil {
		t.Fatalf("RunGuard() error = %v", err)
	}

	if got := verifier.lastContext(); !reflect.DeepEqual(got, input) {
		t.Errorf("evaluated context = %v, want %v", got, input)
	}
}

func TestInvokerInjectedOverridesInput(t *testing.T) {
	verifier := allowAll()
	iv := NewInvoker(verifier)

	input := map[string]any{"x": 1, "y": "keep"}
	extra := map[string]any{"x": 2}
	if err := iv.RunGuard(context.Background(), input, extra); err != nil {
		t.Fatalf("RunGuard() error = %v", err)
	}

	got := verifier.lastContext()
	if got["x"] != 2 {
		t.Errorf("injected value lost: x = %v, want 2", got["x"])
	}
	if got["y"] != "keep" {
		t.Errorf("unrelated field clobbered: y = %v", got["y"])
	}
}

func TestInvokerDoesNotMutateInput(t *testing.T) {
	verifier := allowAll()
	iv := NewInvoker(verifier)

	input := map[string]any{"x": 1}
	if err := iv.RunGuard(context.Background(), input, map[string]any{"x": 2, "z": 3}); err != nil {
		t.Fatalf("RunGuard() error = %v", err)
	}

	if input["x"] != 1 {
		t.Errorf("caller map mutated: x = %v", input["x"])
	}
	if _, ok := input["z"]; ok {
		t.Error("caller map mutated: injected key leaked into input")
	}
}

func TestInvokerCustomMapper(t *testing.T) {
	verifier := allowAll()
	iv := NewInvoker(verifier, WithContextMapper(func(input any) map[string]any {
		return map[string]any{"wrapped": input}
	}))

	if err := iv.RunGuard(context.Background(), 42, nil); err != nil {
		t.Fatalf("RunGuard() error = %v", err)
	}

	if got := verifier.lastContext()["wrapped"]; got != 42 {
		t.Errorf("custom mapper ignored: wrapped = %v", got)
	}
}

func TestInvokerBlocked(t *testing.T) {
	verifier := denyWith("amount must not exceed 1000", "recipient is not on the allowlist")
	iv := NewInvoker(verifier, WithTitle("Tool::transfer"))

	err := iv.RunGuard(context.Background(), map[string]any{"amount": 5000.0}, nil)
	if err == nil {
		t.Fatal("RunGuard() = nil, want blocked error")
	}
	if !errors.Is(err, schema.ErrBlocked) {
		t.Errorf("errors.Is(err, ErrBlocked) = false for %v", err)
	}

	blocked, ok := schema.AsBlocked(err)
	if !ok {
		t.Fatalf("AsBlocked(%v) = false", err)
	}
	if blocked.Title != "Tool::transfer" {
		t.Errorf("Title = %q, want %q", blocked.Title, "Tool::transfer")
	}
	want := []string{"amount must not exceed 1000", "recipient is not on the allowlist"}
	if !reflect.DeepEqual(blocked.Violations, want) {
		t.Errorf("Violations = %v, want %v", blocked.Violations, want)
	}
}

func TestInvokerVerifierErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("policy backend unreachable")
	iv := NewInvoker(failWith(sentinel))

	err := iv.RunGuard(context.Background(), "anything", nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("RunGuard() error = %v, want %v unchanged", err, sentinel)
	}
	if schema.IsBlocked(err) {
		t.Error("verifier failure must not masquerade as a block")
	}
}

func TestInvokerNotifiesObserver(t *testing.T) {
	var seen []schema.Decision
	observer := observerFunc(func(title string, evalCtx map[string]any, decision schema.Decision) {
		if title != "guard" {
			t.Errorf("observer title = %q, want %q", title, "guard")
		}
		seen = append(seen, decision)
	})

	iv := NewInvoker(denyWith("nope"), WithObserver(observer))
	if err := iv.RunGuard(context.Background(), "x", nil); err == nil {
		t.Fatal("RunGuard() = nil, want blocked error")
	}

	if len(seen) != 1 || seen[0].Allowed {
		t.Errorf("observer decisions = %+v, want one block", seen)
	}
}

type observerFunc func(title string, evalCtx map[string]any, decision schema.Decision)

func (f observerFunc) OnDecision(title string, evalCtx map[string]any, decision schema.Decision) {
	f(title, evalCtx, decision)
}
