// Package cslcore guards invocations with a constitution check. A gate or
// proxy normalizes the call input into an evaluation context, merges
// injected fields, consults the policy collaborator, and only then
// delegates to the wrapped unit, which keeps its exact external contract.
//
// The collaborator is anything implementing Verifier; the guard package
// provides the stock one. Blocked invocations surface as
// *schema.BlockedError and the wrapped unit never runs.
package cslcore

import (
	"context"

	"github.com/Flames4fun/csl-core/schema"
)

// Verifier evaluates one invocation context against a compiled
// constitution. Implementations must be safe for concurrent use: every
// invocation of a guarded unit triggers its own Verify call.
type Verifier interface {
	Verify(ctx context.Context, evalCtx map[string]any) (schema.Decision, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, evalCtx map[string]any) (schema.Decision, error)

func (f VerifierFunc) Verify(ctx context.Context, evalCtx map[string]any) (schema.Decision, error) {
	return f(ctx, evalCtx)
}
