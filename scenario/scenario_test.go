package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flames4fun/csl-core/guard"
)

const policySrc = `
name: banking
constraints:
  - field: amount
    op: lte
    value: 1000
    message: amount must not exceed 1000
  - field: recipient
    op: in
    value: [alice, bob]
    message: recipient is not on the allowlist
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func bankingScenario() *Scenario {
	return &Scenario{
		Name:         "banking",
		Constitution: guard.MustCompile(policySrc),
		Cases: []Case{
			{Name: "small transfer", Input: map[string]any{"amount": 100, "recipient": "alice"}, Expect: ExpectAllow},
			{Name: "oversized transfer", Input: map[string]any{"amount": 5000, "recipient": "mallory"}, Expect: ExpectBlock,
				Violations: []string{"amount", "allowlist"}},
		},
	}
}

func TestLoadResolvesPolicyRelativeToScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "banking.yaml", policySrc)
	path := writeFile(t, dir, "transfers.yaml", `
policy: banking.yaml
cases:
  - input: { amount: 100, recipient: alice }
    expect: allow
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "transfers" {
		t.Errorf("Name = %q, want the file base name", s.Name)
	}
	if s.Cases[0].Name != "case 1" {
		t.Errorf("case name = %q, want the positional default", s.Cases[0].Name)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.OK() {
		t.Errorf("result = %+v, want all cases passing", result)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.yaml", `
constitution:
  constraints:
    - field: amount
      op: required
config: { on_missing_key: ignore }
cases:
  - input: { amount: 1 }
    expect: allow
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !s.Config.CollectAll {
		t.Error("CollectAll default lost during overlay")
	}
	if s.Config.OnMissingKey != guard.MissingKeyIgnore {
		t.Errorf("OnMissingKey = %q, want %q", s.Config.OnMissingKey, guard.MissingKeyIgnore)
	}
}

func TestLoadRejectsBrokenScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no cases", "policy: p.yaml\ncases: []\n"},
		{"no policy source", "cases:\n  - input: {}\n    expect: allow\n"},
		{
			"both policy sources",
			"policy: p.yaml\nconstitution:\n  constraints:\n    - field: x\n      op: required\ncases:\n  - input: {}\n    expect: allow\n",
		},
		{"unknown expectation", "policy: p.yaml\ncases:\n  - input: {}\n    expect: maybe\n"},
		{"allow with violations", "policy: p.yaml\ncases:\n  - input: {}\n    expect: allow\n    violations: [x]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "s.yaml", tt.src)
			if _, err := Load(path); err == nil {
				t.Error("Load() = nil error, want rejection")
			}
		})
	}
}

func TestRunCountsAndMatchesViolations(t *testing.T) {
	result, err := bankingScenario().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Passed != 2 || result.Failed != 0 {
		t.Fatalf("Passed/Failed = %d/%d, want 2/0", result.Passed, result.Failed)
	}
	if result.ID == "" {
		t.Error("run id not assigned")
	}

	blocked := result.Results[1]
	if !blocked.Pass {
		t.Errorf("block case failed: %s", blocked.Reason)
	}
	if len(blocked.Got.Violations) != 2 {
		t.Errorf("Got.Violations = %v, want both reasons recorded", blocked.Got.Violations)
	}
}

func TestRunFlagsWrongOutcomes(t *testing.T) {
	s := bankingScenario()
	s.Cases = []Case{
		{Name: "should block", Input: map[string]any{"amount": 1.0, "recipient": "alice"}, Expect: ExpectBlock},
		{Name: "should allow", Input: map[string]any{"amount": 9999.0, "recipient": "alice"}, Expect: ExpectAllow},
		{Name: "wrong substring", Input: map[string]any{"amount": 9999.0, "recipient": "alice"}, Expect: ExpectBlock,
			Violations: []string{"frozen account"}},
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Passed != 0 || result.Failed != 3 {
		t.Fatalf("Passed/Failed = %d/%d, want 0/3", result.Passed, result.Failed)
	}

	if got := result.Results[0].Reason; !strings.Contains(got, "request was allowed") {
		t.Errorf("reason = %q", got)
	}
	if got := result.Results[1].Reason; !strings.Contains(got, "expected allow") {
		t.Errorf("reason = %q", got)
	}
	if got := result.Results[2].Reason; !strings.Contains(got, "frozen account") {
		t.Errorf("reason = %q", got)
	}
}

func TestRunCapturesEvaluationFailures(t *testing.T) {
	cfg := guard.DefaultConfig()
	cfg.OnEvalError = guard.EvalErrorRaise

	s := &Scenario{
		Name: "strict",
		Constitution: guard.MustCompile(`
constraints:
  - field: amount
    op: gt
    value: 0
`),
		Config: &cfg,
		Cases: []Case{
			{Name: "bad type", Input: map[string]any{"amount": "lots"}, Expect: ExpectAllow},
		},
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Results[0].Pass {
		t.Error("case with a broken evaluation passed")
	}
	if result.Results[0].Err == "" {
		t.Error("evaluation failure not recorded on the case")
	}
}

func TestFormatText(t *testing.T) {
	result, err := bankingScenario().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var buf bytes.Buffer
	FormatText(&buf, result, false)

	out := buf.String()
	for _, want := range []string{"banking", "2 passed, 0 failed", "PASS  small transfer", "PASS  oversized transfer"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	result, err := bankingScenario().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var buf bytes.Buffer
	if err := FormatJSON(&buf, result); err != nil {
		t.Fatalf("FormatJSON() error = %v", err)
	}

	var decoded RunResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Scenario != "banking" || decoded.Passed != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}
