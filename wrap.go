package cslcore

import "github.com/Flames4fun/csl-core/tools"

// WrapTool builds a guarded proxy around one tool. The proxy takes the
// wrapped tool's name ("unknown" when it has none) unless WithName
// overrides it.
func WrapTool(tool tools.Tool, verifier Verifier, opts ...Option) *GuardedTool {
	cfg := newConfig(opts)

	name := cfg.name
	if name == "" {
		name = tool.Name()
	}
	if name == "" {
		name = "unknown"
	}
	title := cfg.title
	if title == "" {
		title = "Tool::" + name
	}

	return &GuardedTool{
		wrapped: tool,
		invoker: &Invoker{
			verifier: verifier,
			mapper:   cfg.mapper,
			title:    title,
			observer: cfg.observer,
		},
		inject:  cfg.inject,
		idField: cfg.idField,
		name:    name,
	}
}

// GuardTools wraps every tool in ts with one shared configuration,
// returning one independent proxy per tool in input order. The input
// slice is not mutated and no deduplication happens; each proxy owns its
// own copy of the injected fields.
func GuardTools(ts []tools.Tool, verifier Verifier, opts ...Option) []tools.Tool {
	guarded := make([]tools.Tool, len(ts))
	for i, t := range ts {
		guarded[i] = WrapTool(t, verifier, opts...)
	}
	return guarded
}
