package schema

// Decision is the outcome of evaluating a constitution against one context.
// It is produced once per invocation and never cached: every call to a
// guarded unit triggers its own evaluation.
type Decision struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

// Allow creates a passing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Block creates a denying decision carrying the violated rule messages,
// in evaluation order.
func Block(violations ...string) Decision {
	return Decision{
		Allowed:    false,
		Violations: violations,
	}
}
