// Package guard is the policy collaborator: it compiles constitution
// source into an ordered constraint list and verifies invocation contexts
// against it, yielding allow/block decisions with violation lists.
package guard

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Flames4fun/csl-core/schema"
)

// Guard evaluates one compiled constitution. Stateless across calls and
// safe for concurrent use.
type Guard struct {
	constitution *Constitution
	cfg          Config
}

// New creates a guard over a compiled constitution.
func New(c *Constitution, cfg Config) *Guard {
	return &Guard{constitution: c, cfg: cfg.normalized()}
}

// Constitution returns the guard's compiled policy (for inspection).
func (g *Guard) Constitution() *Constitution {
	return g.constitution
}

// Verify evaluates every constraint against the context in declaration
// order. Violations keep that order. An error is returned only for
// cancellation or, under EvalErrorRaise, for constraints that could not be
// evaluated; a denied context is a Decision, not an error.
func (g *Guard) Verify(ctx context.Context, evalCtx map[string]any) (schema.Decision, error) {
	var violations []string

	for i := range g.constitution.Constraints {
		if err := ctx.Err(); err != nil {
			return schema.Decision{}, err
		}
		c := &g.constitution.Constraints[i]
		value, present := evalCtx[c.Field]

		if c.Op == OpRequired {
			if !present {
				violations = append(violations, c.violation())
				if !g.cfg.CollectAll {
					break
				}
			}
			continue
		}

		if !present {
			if c.Required || g.cfg.OnMissingKey == MissingKeyBlock {
				violations = append(violations, fmt.Sprintf("missing required field %q", c.Field))
				if !g.cfg.CollectAll {
					break
				}
			}
			continue
		}

		ok, err := c.eval(value)
		if err != nil {
			if g.cfg.OnEvalError == EvalErrorRaise {
				return schema.Decision{}, schema.NewEvaluationError(c.Name, c.Field, err)
			}
			violations = append(violations, fmt.Sprintf("constraint %q could not be evaluated: %v", c.Name, err))
			if !g.cfg.CollectAll {
				break
			}
			continue
		}
		if !ok {
			violations = append(violations, c.violation())
			if !g.cfg.CollectAll {
				break
			}
		}
	}

	if len(violations) > 0 {
		return schema.Block(violations...), nil
	}
	return schema.Allow(), nil
}

// eval applies the operator to one context value. The required op and
// missing fields are handled by the caller.
func (c *Constraint) eval(value any) (bool, error) {
	switch c.Op {
	case OpEq:
		return equalValues(value, c.Value), nil
	case OpNe:
		return !equalValues(value, c.Value), nil
	case OpGt, OpGte, OpLt, OpLte:
		left, ok := toFloat(value)
		if !ok {
			return false, fmt.Errorf("op %s: field value %v is not numeric", c.Op, value)
		}
		right, ok := toFloat(c.Value)
		if !ok {
			return false, fmt.Errorf("op %s: constraint value %v is not numeric", c.Op, c.Value)
		}
		switch c.Op {
		case OpGt:
			return left > right, nil
		case OpGte:
			return left >= right, nil
		case OpLt:
			return left < right, nil
		default:
			return left <= right, nil
		}
	case OpIn:
		return member(c.Value.([]any), value), nil
	case OpNotIn:
		return !member(c.Value.([]any), value), nil
	case OpContains:
		switch hv := value.(type) {
		case string:
			needle, ok := c.Value.(string)
			if !ok {
				return false, fmt.Errorf("op contains: needle %v is not a string", c.Value)
			}
			return strings.Contains(hv, needle), nil
		case []any:
			return member(hv, c.Value), nil
		default:
			return false, fmt.Errorf("op contains: field value %v is not a string or list", value)
		}
	case OpMatches:
		s, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("op matches: field value %v is not a string", value)
		}
		return c.re.MatchString(s), nil
	default:
		return false, fmt.Errorf("unknown op %q", c.Op)
	}
}

// toFloat widens any numeric representation YAML or JSON can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// equalValues compares with numeric widening so YAML integers meet JSON
// floats cleanly.
func equalValues(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func member(list []any, v any) bool {
	for _, item := range list {
		if equalValues(item, v) {
			return true
		}
	}
	return false
}
