package cslcore

import (
	"context"

	"github.com/Flames4fun/csl-core/schema"
)

// Invoker owns one verifier reference and one context mapper. It is the
// shared check used by gates and tool proxies: build context, merge
// extras, verify, signal. Immutable after construction.
type Invoker struct {
	verifier Verifier
	mapper   ContextMapper
	title    string
	observer Observer
}

// NewInvoker creates a standalone invoker. Gates and proxies build their
// own; this constructor serves callers that want the guard check without
// wrapping anything.
func NewInvoker(verifier Verifier, opts ...Option) *Invoker {
	cfg := newConfig(opts)
	title := cfg.title
	if title == "" {
		title = "guard"
	}
	return &Invoker{
		verifier: verifier,
		mapper:   cfg.mapper,
		title:    title,
		observer: cfg.observer,
	}
}

// Title returns the invoker's diagnostics title.
func (iv *Invoker) Title() string {
	return iv.title
}

// RunGuard builds the evaluation context from input, merges extra over it
// (extra wins on key collision), and verifies. A denial returns
// *schema.BlockedError carrying the verifier's violation list verbatim.
// Verifier errors propagate unchanged: failure policy belongs to the
// collaborator, and RunGuard never downgrades its errors into allows.
func (iv *Invoker) RunGuard(ctx context.Context, input any, extra map[string]any) error {
	mapped := iv.mapper(input)

	evalCtx := make(map[string]any, len(mapped)+len(extra))
	for k, v := range mapped {
		evalCtx[k] = v
	}
	for k, v := range extra {
		evalCtx[k] = v
	}

	decision, err := iv.verifier.Verify(ctx, evalCtx)
	if err != nil {
		return err
	}

	iv.observer.OnDecision(iv.title, evalCtx, decision)

	if !decision.Allowed {
		return schema.NewBlockedError(iv.title, decision.Violations)
	}
	return nil
}
