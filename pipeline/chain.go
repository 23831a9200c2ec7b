package pipeline

import (
	"context"

	"github.com/Flames4fun/csl-core/schema"
)

// Chain runs steps sequentially, feeding each step's output to the next
// step's input. A Chain is itself a Step, so chains nest.
type Chain struct {
	name  string
	steps []Step
}

// NewChain creates a linear pipeline.
func NewChain(name string, steps ...Step) *Chain {
	return &Chain{name: name, steps: steps}
}

func (c *Chain) Name() string {
	return c.name
}

// Run executes the steps in order, stopping at the first failure. An
// empty chain returns its input unchanged.
func (c *Chain) Run(ctx context.Context, input any) (any, error) {
	current := input
	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output, err := step.Run(ctx, current)
		if err != nil {
			return nil, schema.NewStepError(step.Name(), err)
		}
		current = output
	}
	return current, nil
}
