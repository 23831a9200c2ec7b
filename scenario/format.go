package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	scenarioStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// FormatText writes a human-readable report. Styling is the caller's call;
// the CLI enables it only on terminals.
func FormatText(w io.Writer, r *RunResult, styled bool) {
	name := r.Scenario
	runID := "#" + shortID(r.ID)
	if styled {
		name = scenarioStyle.Render(name)
		runID = mutedStyle.Render(runID)
	}
	fmt.Fprintf(w, "%s %s  %d passed, %d failed\n", name, runID, r.Passed, r.Failed)

	for _, cr := range r.Results {
		tag := "PASS"
		if !cr.Pass {
			tag = "FAIL"
		}
		if styled {
			if cr.Pass {
				tag = passStyle.Render(tag)
			} else {
				tag = failStyle.Render(tag)
			}
		}
		fmt.Fprintf(w, "  %s  %s\n", tag, cr.Name)
		if cr.Reason != "" {
			reason := cr.Reason
			if styled {
				reason = mutedStyle.Render(reason)
			}
			fmt.Fprintf(w, "        %s\n", reason)
		}
	}
}

// FormatJSON writes the run result as indented JSON.
func FormatJSON(w io.Writer, r *RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
