package cslcore

import "io"

type config struct {
	mapper   ContextMapper
	inject   map[string]any
	idField  string
	title    string
	name     string
	observer Observer
}

func newConfig(opts []Option) *config {
	cfg := &config{
		mapper:   DefaultContextMapper,
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures gates, tool proxies, and invokers.
type Option func(*config)

// WithContextMapper replaces the default input-to-context mapping.
func WithContextMapper(m ContextMapper) Option {
	return func(cfg *config) {
		if m != nil {
			cfg.mapper = m
		}
	}
}

// WithInject adds constant fields to every evaluated context. Injected
// fields override input-derived fields of the same name: wrap-time
// configuration is trusted over caller input. The map is copied, so the
// caller's map and each wrapped unit stay independent.
func WithInject(fields map[string]any) Option {
	return func(cfg *config) {
		if len(fields) == 0 {
			return
		}
		if cfg.inject == nil {
			cfg.inject = make(map[string]any, len(fields))
		}
		for k, v := range fields {
			cfg.inject[k] = v
		}
	}
}

// WithIdentityField injects the wrapped tool's own name into the context
// under the given key on every call. The conventional key is "tool_name".
func WithIdentityField(name string) Option {
	return func(cfg *config) {
		cfg.idField = name
	}
}

// WithTitle sets the human-readable title used in diagnostics and block
// messages.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = title
	}
}

// WithName overrides the proxy's display name. By default a tool proxy
// takes the wrapped tool's name and a gate is called "gate".
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithObserver installs a decision observer.
func WithObserver(o Observer) Option {
	return func(cfg *config) {
		if o != nil {
			cfg.observer = o
		}
	}
}

// WithDiagnostics enables compact per-decision console reports on w
// (stderr when nil).
func WithDiagnostics(w io.Writer) Option {
	return func(cfg *config) {
		cfg.observer = NewConsoleObserver(w)
	}
}
