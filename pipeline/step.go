// Package pipeline defines the single-input/single-output step contract
// that guarded pipelines compose over.
package pipeline

import "context"

// Step is one unit of a linear pipeline: it consumes one value and
// produces one value. A gate is a Step whose output is its input.
type Step interface {
	Name() string
	Run(ctx context.Context, input any) (any, error)
}

// StepFunc adapts a plain function to the Step interface.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, input any) (any, error)
}

// NewStep wraps fn as a named step.
func NewStep(name string, fn func(ctx context.Context, input any) (any, error)) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

func (s *StepFunc) Name() string {
	return s.name
}

func (s *StepFunc) Run(ctx context.Context, input any) (any, error) {
	return s.fn(ctx, input)
}
