package cslcore

import (
	"context"

	"github.com/Flames4fun/csl-core/pipeline"
)

// Gate authorizes a pipeline payload without transforming it. On allow it
// returns the input value unchanged; on block it returns
// *schema.BlockedError and nothing downstream runs. The gate does not
// copy the payload, so callers sharing a mutable input across goroutines
// between check and downstream use keep that responsibility.
type Gate struct {
	invoker *Invoker
	inject  map[string]any
	name    string
}

var _ pipeline.Step = (*Gate)(nil)

// NewGate creates a pass-through gate checking every payload against the
// verifier.
func NewGate(verifier Verifier, opts ...Option) *Gate {
	cfg := newConfig(opts)
	name := cfg.name
	if name == "" {
		name = "gate"
	}
	title := cfg.title
	if title == "" {
		title = "Pipeline::Gate"
	}
	return &Gate{
		invoker: &Invoker{
			verifier: verifier,
			mapper:   cfg.mapper,
			title:    title,
			observer: cfg.observer,
		},
		inject: cfg.inject,
		name:   name,
	}
}

func (g *Gate) Name() string {
	return g.name
}

// Run checks the input and passes it through untouched.
func (g *Gate) Run(ctx context.Context, input any) (any, error) {
	if err := g.invoker.RunGuard(ctx, input, g.inject); err != nil {
		return nil, err
	}
	return input, nil
}
