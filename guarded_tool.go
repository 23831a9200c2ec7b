package cslcore

import (
	"context"
	"encoding/json"

	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// GuardedTool proxies a tool behind a constitution check. It exposes the
// wrapped tool's identity unchanged, so callers enumerating or invoking
// tools generically cannot tell it apart from the bare tool; the only
// observable difference is a *schema.BlockedError on policy violation.
//
// Guard state lives in the proxy, never in the wrapped tool: composition
// keeps the invoker invisible to schema or reflection machinery the
// tool's ecosystem may run over it.
type GuardedTool struct {
	wrapped tools.Tool
	invoker *Invoker
	inject  map[string]any
	idField string
	name    string
}

var (
	_ tools.Tool      = (*GuardedTool)(nil)
	_ tools.AsyncTool = (*GuardedTool)(nil)
)

func (g *GuardedTool) Name() string {
	return g.name
}

func (g *GuardedTool) Description() string {
	return g.wrapped.Description()
}

func (g *GuardedTool) Schema() *tools.ToolSchema {
	return g.wrapped.Schema()
}

func (g *GuardedTool) Capabilities() []tools.Capability {
	return g.wrapped.Capabilities()
}

// Unwrap returns the tool behind the guard.
func (g *GuardedTool) Unwrap() tools.Tool {
	return g.wrapped
}

// checkCall runs the guard for one invocation. Both execution paths go
// through here, so a decision never depends on which path was called.
func (g *GuardedTool) checkCall(ctx context.Context, input json.RawMessage) error {
	call := schema.ParseCall(input)

	// Fresh copy per call: concurrent invocations must not see each
	// other's identity fields.
	extra := make(map[string]any, len(g.inject)+1)
	for k, v := range g.inject {
		extra[k] = v
	}
	if g.idField != "" {
		idValue := g.wrapped.Name()
		if idValue == "" {
			idValue = g.name
		}
		extra[g.idField] = idValue
	}

	return g.invoker.RunGuard(ctx, call.Input(), extra)
}

// Check runs the constitution against input without executing anything.
// A nil return means the call would have been allowed at check time; a
// later Execute re-evaluates, so the answer can change if the context
// feeding the verifier changes in between.
func (g *GuardedTool) Check(ctx context.Context, input json.RawMessage) error {
	return g.checkCall(ctx, input)
}

// Execute checks the call and then delegates to the wrapped tool with the
// original input bytes, not the normalized context. Errors from the
// wrapped tool propagate unchanged.
func (g *GuardedTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	if err := g.checkCall(ctx, input); err != nil {
		return nil, err
	}
	return g.wrapped.Execute(ctx, input)
}

// ExecuteAsync performs the same synchronous check, then delegates to the
// wrapped tool's own suspendable path, or runs its blocking path off the
// caller's goroutine when it has none. The check happens exactly once,
// before any delegation.
func (g *GuardedTool) ExecuteAsync(ctx context.Context, input json.RawMessage) (<-chan tools.ToolResult, error) {
	if err := g.checkCall(ctx, input); err != nil {
		return nil, err
	}
	return tools.RunAsync(ctx, g.wrapped, input)
}
