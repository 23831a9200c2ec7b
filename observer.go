package cslcore

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/Flames4fun/csl-core/schema"
)

// Observer receives every guard decision. Observers are diagnostics only:
// nothing in the pass/block flow depends on them.
type Observer interface {
	OnDecision(title string, evalCtx map[string]any, decision schema.Decision)
}

// NoopObserver discards decisions. It is the default.
type NoopObserver struct{}

func (NoopObserver) OnDecision(string, map[string]any, schema.Decision) {}

var (
	passTagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	blockTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ConsoleObserver prints one compact report per decision: a PASS/BLOCK
// tag, the invoker title, a short invocation id, and any violations.
type ConsoleObserver struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleObserver writes decision reports to w, defaulting to stderr.
func NewConsoleObserver(w io.Writer) *ConsoleObserver {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleObserver{w: w}
}

func (o *ConsoleObserver) OnDecision(title string, evalCtx map[string]any, decision schema.Decision) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tag := passTagStyle.Render("PASS ")
	if !decision.Allowed {
		tag = blockTagStyle.Render("BLOCK")
	}
	id := uuid.NewString()[:8]
	fmt.Fprintf(o.w, "%s %s %s\n", tag, titleStyle.Render(title), mutedStyle.Render("#"+id))
	for _, v := range decision.Violations {
		fmt.Fprintf(o.w, "      %s %s\n", blockTagStyle.Render("✗"), v)
	}
}
