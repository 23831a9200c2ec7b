package cslcore

// InputKey is the context key non-map inputs are wrapped under by the
// default mapper.
const InputKey = "input"

// ContextMapper transforms a raw call input into the flat context the
// verifier evaluates. Mappers run on every invocation, including ones
// that end up blocked, so they must be deterministic and side-effect
// free.
type ContextMapper func(input any) map[string]any

// DefaultContextMapper passes map inputs through as a shallow copy and
// wraps anything else under InputKey.
func DefaultContextMapper(input any) map[string]any {
	switch v := input.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case nil:
		return map[string]any{}
	default:
		return map[string]any{InputKey: input}
	}
}
