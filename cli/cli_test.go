package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testPolicy = `
name: banking
constraints:
  - field: amount
    op: lte
    value: 1000
    message: amount must not exceed 1000
`

func TestParseInject(t *testing.T) {
	inject, err := parseInject([]string{"channel=mcp", "env=prod"})
	if err != nil {
		t.Fatalf("parseInject() error = %v", err)
	}
	if inject["channel"] != "mcp" || inject["env"] != "prod" {
		t.Errorf("inject = %v", inject)
	}

	if _, err := parseInject([]string{"novalue"}); err == nil {
		t.Error("parseInject() accepted a pair without =")
	}
	if _, err := parseInject([]string{"=x"}); err == nil {
		t.Error("parseInject() accepted an empty key")
	}
	if inject, _ := parseInject(nil); inject != nil {
		t.Errorf("parseInject(nil) = %v, want nil", inject)
	}
}

func TestIsYAML(t *testing.T) {
	if !isYAML("a/b/policy.yaml") || !isYAML("s.yml") {
		t.Error("yaml extensions not recognized")
	}
	if isYAML("notes.txt") || isYAML("policy.yaml.bak") {
		t.Error("non-yaml files recognized")
	}
}

func TestRunScenariosReportsOutcome(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "banking.yaml", testPolicy)
	passing := writeFile(t, dir, "passing.yaml", `
policy: banking.yaml
cases:
  - name: small transfer
    input: { amount: 100 }
    expect: allow
`)
	failing := writeFile(t, dir, "failing.yaml", `
policy: banking.yaml
cases:
  - name: should block
    input: { amount: 100 }
    expect: block
`)

	var buf bytes.Buffer
	ok, err := runScenarios(context.Background(), &buf, []string{passing})
	if err != nil {
		t.Fatalf("runScenarios() error = %v", err)
	}
	if !ok {
		t.Error("passing scenario reported as failing")
	}
	if !strings.Contains(buf.String(), "PASS") {
		t.Errorf("output missing PASS tag:\n%s", buf.String())
	}

	buf.Reset()
	ok, err = runScenarios(context.Background(), &buf, []string{failing})
	if err != nil {
		t.Fatalf("runScenarios() error = %v", err)
	}
	if ok {
		t.Error("failing scenario reported as passing")
	}
	if !strings.Contains(buf.String(), "FAIL") {
		t.Errorf("output missing FAIL tag:\n%s", buf.String())
	}
}

func TestRunScenariosJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "banking.yaml", testPolicy)
	path := writeFile(t, dir, "s.yaml", `
policy: banking.yaml
cases:
  - input: { amount: 100 }
    expect: allow
`)

	checkJSON = true
	defer func() { checkJSON = false }()

	var buf bytes.Buffer
	if _, err := runScenarios(context.Background(), &buf, []string{path}); err != nil {
		t.Fatalf("runScenarios() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"scenario": "s"`) {
		t.Errorf("JSON output missing scenario name:\n%s", buf.String())
	}
}

func TestReadEvalInput(t *testing.T) {
	restore := func() { evalInput, evalInputFile = "", "" }
	defer restore()

	restore()
	evalCtx, err := readEvalInput()
	if err != nil || len(evalCtx) != 0 {
		t.Errorf("empty input: ctx = %v, err = %v", evalCtx, err)
	}

	restore()
	evalInput = `{"amount": 500}`
	evalCtx, err = readEvalInput()
	if err != nil {
		t.Fatalf("readEvalInput() error = %v", err)
	}
	if evalCtx["amount"] != 500.0 {
		t.Errorf("ctx = %v", evalCtx)
	}

	restore()
	evalInput = `[1, 2]`
	if _, err := readEvalInput(); err == nil {
		t.Error("non-object input accepted")
	}

	restore()
	evalInput, evalInputFile = `{}`, "f.json"
	if _, err := readEvalInput(); err == nil {
		t.Error("both input flags accepted together")
	}

	restore()
	evalInputFile = writeFile(t, t.TempDir(), "input.json", `{"recipient": "alice"}`)
	evalCtx, err = readEvalInput()
	if err != nil {
		t.Fatalf("readEvalInput() error = %v", err)
	}
	if evalCtx["recipient"] != "alice" {
		t.Errorf("ctx = %v", evalCtx)
	}
}

func TestWatchDirsIncludesPolicyDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policies/banking.yaml", testPolicy)
	one := writeFile(t, dir, "scenarios/one.yaml", `
policy: ../policies/banking.yaml
cases:
  - input: { amount: 100 }
    expect: allow
`)
	two := writeFile(t, dir, "scenarios/two.yaml", `
policy: ../policies/banking.yaml
cases:
  - input: { amount: 5000 }
    expect: block
`)

	dirs := watchDirs([]string{one, two})
	if len(dirs) != 2 {
		t.Fatalf("watchDirs() = %v, want scenario and policy dirs once each", dirs)
	}
}
