// Package scenario runs allow/block expectations against a constitution.
// Scenario files are the test harness for policies: each case names an
// input context and whether the constitution should let it through.
package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Flames4fun/csl-core/guard"
	"github.com/Flames4fun/csl-core/schema"
)

// Case expectations.
const (
	ExpectAllow = "allow"
	ExpectBlock = "block"
)

// Case is one input context with an expected outcome. Violations are
// substring matches against the reported violation list, order-insensitive.
type Case struct {
	Name       string         `yaml:"name" json:"name"`
	Input      map[string]any `yaml:"input" json:"input"`
	Expect     string         `yaml:"expect" json:"expect"`
	Violations []string       `yaml:"violations,omitempty" json:"violations,omitempty"`
}

// Scenario binds a constitution to a list of cases. The constitution comes
// either from a policy file path (resolved relative to the scenario file) or
// from an inline constitution block, never both.
type Scenario struct {
	Name         string              `yaml:"name" json:"name"`
	Policy       string              `yaml:"policy,omitempty" json:"policy,omitempty"`
	Constitution *guard.Constitution `yaml:"constitution,omitempty" json:"-"`
	Config       *guard.Config       `yaml:"config,omitempty" json:"-"`
	Cases        []Case              `yaml:"cases" json:"cases"`

	dir string
}

// CaseResult is the outcome of one case. Reason is empty when the case
// passed.
type CaseResult struct {
	Name   string          `json:"name"`
	Expect string          `json:"expect"`
	Pass   bool            `json:"pass"`
	Got    schema.Decision `json:"got"`
	Err    string          `json:"error,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// RunResult aggregates one scenario run.
type RunResult struct {
	ID       string       `json:"id"`
	Scenario string       `json:"scenario"`
	Results  []CaseResult `json:"results"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
}

// OK reports whether every case passed.
func (r *RunResult) OK() bool {
	return r.Failed == 0
}

// Load reads a scenario file. Config keys absent from the file keep their
// defaults, so a scenario only states what it overrides.
func Load(path string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	cfg := guard.DefaultConfig()
	s := &Scenario{Config: &cfg}
	if err := yaml.Unmarshal(src, s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

func (s *Scenario) validate() error {
	if s.Policy == "" && s.Constitution == nil {
		return fmt.Errorf("%w: no policy or constitution", schema.ErrInvalidInput)
	}
	if s.Policy != "" && s.Constitution != nil {
		return fmt.Errorf("%w: policy and constitution are mutually exclusive", schema.ErrInvalidInput)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("%w: no cases defined", schema.ErrInvalidInput)
	}
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case %d", i+1)
		}
		switch c.Expect {
		case ExpectAllow:
			if len(c.Violations) > 0 {
				return fmt.Errorf("%w: case %q expects allow but lists violations", schema.ErrInvalidInput, c.Name)
			}
		case ExpectBlock:
		default:
			return fmt.Errorf("%w: case %q: expect must be %q or %q", schema.ErrInvalidInput, c.Name, ExpectAllow, ExpectBlock)
		}
	}
	return nil
}

// Run compiles the scenario's constitution and verifies every case against
// it. Case failures land in the result; Run itself only fails on a broken
// scenario or a cancelled context.
func (s *Scenario) Run(ctx context.Context) (*RunResult, error) {
	constitution, err := s.compile()
	if err != nil {
		return nil, err
	}
	cfg := guard.DefaultConfig()
	if s.Config != nil {
		cfg = *s.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	g := guard.New(constitution, cfg)
	result := &RunResult{ID: uuid.NewString(), Scenario: s.Name}
	for i := range s.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr := s.Cases[i].run(ctx, g)
		if cr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, cr)
	}
	return result, nil
}

func (s *Scenario) compile() (*guard.Constitution, error) {
	if s.Constitution != nil {
		if err := s.Constitution.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		return s.Constitution, nil
	}
	path := s.Policy
	if !filepath.IsAbs(path) && s.dir != "" {
		path = filepath.Join(s.dir, path)
	}
	return guard.Load(path)
}

func (c *Case) run(ctx context.Context, g *guard.Guard) CaseResult {
	cr := CaseResult{Name: c.Name, Expect: c.Expect}

	decision, err := g.Verify(ctx, c.Input)
	if err != nil {
		cr.Err = err.Error()
		cr.Reason = fmt.Sprintf("verify: %v", err)
		return cr
	}
	cr.Got = decision

	switch c.Expect {
	case ExpectAllow:
		if decision.Allowed {
			cr.Pass = true
		} else {
			cr.Reason = fmt.Sprintf("expected allow, blocked: %s", strings.Join(decision.Violations, "; "))
		}
	case ExpectBlock:
		if decision.Allowed {
			cr.Reason = "expected block, request was allowed"
			break
		}
		if missing, ok := c.missingViolation(decision.Violations); ok {
			cr.Reason = fmt.Sprintf("violation %q not reported (got: %s)", missing, strings.Join(decision.Violations, "; "))
			break
		}
		cr.Pass = true
	}
	return cr
}

// missingViolation returns the first expected substring absent from the
// reported violations.
func (c *Case) missingViolation(got []string) (string, bool) {
	for _, want := range c.Violations {
		found := false
		for _, v := range got {
			if strings.Contains(v, want) {
				found = true
				break
			}
		}
		if !found {
			return want, true
		}
	}
	return "", false
}
