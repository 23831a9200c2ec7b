package schema

import (
	"bytes"
	"encoding/json"
)

// CallKind discriminates the argument shape of a tool invocation.
type CallKind int

const (
	// CallEmpty is an invocation with no arguments.
	CallEmpty CallKind = iota
	// CallPositional carries an ordered argument list.
	CallPositional
	// CallKeyword carries named arguments.
	CallKeyword
)

// Call normalizes the three ways a tool can be invoked into one tagged
// value. Guard evaluation and delegation both start from a Call, so a
// decision never depends on the call style the orchestration layer used.
type Call struct {
	Kind   CallKind
	Args   []any
	Kwargs map[string]any

	raw json.RawMessage
}

// EmptyCall creates an argument-less invocation.
func EmptyCall() Call {
	return Call{Kind: CallEmpty}
}

// PositionalCall creates an invocation from ordered arguments.
func PositionalCall(args ...any) Call {
	if len(args) == 0 {
		return EmptyCall()
	}
	return Call{Kind: CallPositional, Args: args}
}

// KeywordCall creates an invocation from named arguments.
func KeywordCall(kwargs map[string]any) Call {
	if len(kwargs) == 0 {
		return EmptyCall()
	}
	return Call{Kind: CallKeyword, Kwargs: kwargs}
}

// ParseCall classifies raw tool input. A JSON object becomes a keyword
// call, a JSON array a positional one, and any other value a single
// positional argument. Empty or null input is an empty call. ParseCall
// never fails: undecodable bytes degrade to one positional string so the
// guard still sees something evaluable.
func ParseCall(raw json.RawMessage) Call {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Call{Kind: CallEmpty, raw: raw}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Call{Kind: CallPositional, Args: []any{string(raw)}, raw: raw}
	}

	switch tv := v.(type) {
	case map[string]any:
		return Call{Kind: CallKeyword, Kwargs: tv, raw: raw}
	case []any:
		return Call{Kind: CallPositional, Args: tv, raw: raw}
	default:
		return Call{Kind: CallPositional, Args: []any{tv}, raw: raw}
	}
}

// Input resolves the value the guard evaluates: keyword arguments win when
// present, then the first positional argument, then an empty map.
func (c Call) Input() any {
	if len(c.Kwargs) > 0 {
		return c.Kwargs
	}
	if len(c.Args) > 0 {
		return c.Args[0]
	}
	return map[string]any{}
}

// Raw returns the invocation encoded as tool input. Calls built by
// ParseCall return the original bytes untouched; programmatically built
// calls are encoded from their arguments.
func (c Call) Raw() (json.RawMessage, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	switch c.Kind {
	case CallKeyword:
		return json.Marshal(c.Kwargs)
	case CallPositional:
		if len(c.Args) == 1 {
			return json.Marshal(c.Args[0])
		}
		return json.Marshal(c.Args)
	default:
		return json.RawMessage(`{}`), nil
	}
}
