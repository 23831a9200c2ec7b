package guard

import (
	"fmt"
	"regexp"

	"github.com/Flames4fun/csl-core/schema"
)

// Supported constraint operators.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpIn       = "in"
	OpNotIn    = "not_in"
	OpContains = "contains"
	OpMatches  = "matches"
	OpRequired = "required"
)

var knownOps = map[string]bool{
	OpEq: true, OpNe: true,
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true, OpNotIn: true,
	OpContains: true, OpMatches: true, OpRequired: true,
}

// Constitution is a compiled policy: an ordered list of constraints over
// context fields. Compiled once, then shared read-only across every guard
// and invocation that references it.
type Constitution struct {
	Name        string       `yaml:"name"`
	Version     string       `yaml:"version"`
	Constraints []Constraint `yaml:"constraints"`
}

// Validate checks every constraint and compiles any regular expressions.
// Compile calls it; callers that build or unmarshal a Constitution
// themselves must call it before handing the constitution to a guard.
func (c *Constitution) Validate() error {
	if len(c.Constraints) == 0 {
		return fmt.Errorf("%w: no constraints defined", schema.ErrConstitutionInvalid)
	}
	for i := range c.Constraints {
		if err := c.Constraints[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// Constraint is one declarative rule. Constraints evaluate in declaration
// order, and violation lists keep that order.
type Constraint struct {
	Name     string `yaml:"name"`
	Field    string `yaml:"field"`
	Op       string `yaml:"op"`
	Value    any    `yaml:"value"`
	Message  string `yaml:"message"`
	Required bool   `yaml:"required"`

	re *regexp.Regexp
}

func (c *Constraint) validate(index int) error {
	if c.Field == "" {
		return fmt.Errorf("%w: constraint %d: field is required", schema.ErrConstitutionInvalid, index)
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("%s-%s", c.Field, c.Op)
	}
	if !knownOps[c.Op] {
		return fmt.Errorf("%w: constraint %q: unknown op %q", schema.ErrConstitutionInvalid, c.Name, c.Op)
	}

	switch c.Op {
	case OpIn, OpNotIn:
		if _, ok := c.Value.([]any); !ok {
			return fmt.Errorf("%w: constraint %q: op %s requires a list value", schema.ErrConstitutionInvalid, c.Name, c.Op)
		}
	case OpMatches:
		pattern, ok := c.Value.(string)
		if !ok {
			return fmt.Errorf("%w: constraint %q: op matches requires a string pattern", schema.ErrConstitutionInvalid, c.Name)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: constraint %q: bad pattern: %v", schema.ErrConstitutionInvalid, c.Name, err)
		}
		c.re = re
	case OpRequired:
		// No value needed.
	default:
		if c.Value == nil {
			return fmt.Errorf("%w: constraint %q: op %s requires a value", schema.ErrConstitutionInvalid, c.Name, c.Op)
		}
	}
	return nil
}

// violation resolves the human-readable text surfaced when the constraint
// fails.
func (c *Constraint) violation() string {
	if c.Message != "" {
		return c.Message
	}
	return fmt.Sprintf("constraint %q failed on field %q", c.Name, c.Field)
}
