package guard

import "fmt"

// MissingKeyMode controls what happens when a constraint references a
// context field the invocation did not provide.
type MissingKeyMode string

const (
	// MissingKeyBlock treats the absence as a violation.
	MissingKeyBlock MissingKeyMode = "block"
	// MissingKeyIgnore skips the constraint.
	MissingKeyIgnore MissingKeyMode = "ignore"
)

// EvalErrorMode controls what happens when a constraint cannot be
// evaluated, e.g. comparing a string against a numeric bound.
type EvalErrorMode string

const (
	// EvalErrorBlock turns the failure into a violation.
	EvalErrorBlock EvalErrorMode = "block"
	// EvalErrorRaise surfaces the failure as an error to the caller.
	EvalErrorRaise EvalErrorMode = "raise"
)

// Config tunes evaluation behavior. These knobs belong to the policy
// collaborator alone: gates and proxies never consult them.
type Config struct {
	CollectAll   bool           `yaml:"collect_all"`
	OnMissingKey MissingKeyMode `yaml:"on_missing_key"`
	OnEvalError  EvalErrorMode  `yaml:"on_eval_error"`
}

// DefaultConfig collects every violation and blocks on both missing keys
// and evaluation failures.
func DefaultConfig() Config {
	return Config{
		CollectAll:   true,
		OnMissingKey: MissingKeyBlock,
		OnEvalError:  EvalErrorBlock,
	}
}

// Validate rejects unknown mode strings, e.g. from a hand-edited YAML
// scenario.
func (c Config) Validate() error {
	switch c.OnMissingKey {
	case MissingKeyBlock, MissingKeyIgnore:
	default:
		return fmt.Errorf("unknown missing-key mode %q", c.OnMissingKey)
	}
	switch c.OnEvalError {
	case EvalErrorBlock, EvalErrorRaise:
	default:
		return fmt.Errorf("unknown eval-error mode %q", c.OnEvalError)
	}
	return nil
}

// normalized fills zero-valued modes with their defaults so a partially
// populated Config behaves predictably.
func (c Config) normalized() Config {
	if c.OnMissingKey == "" {
		c.OnMissingKey = MissingKeyBlock
	}
	if c.OnEvalError == "" {
		c.OnEvalError = EvalErrorBlock
	}
	return c
}
