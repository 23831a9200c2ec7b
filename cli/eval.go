package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Flames4fun/csl-core/guard"
)

var (
	evalPolicy     string
	evalInput      string
	evalInputFile  string
	evalJSON       bool
	evalFirstOnly  bool
	evalMissingKey string
	evalEvalError  string
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalPolicy, "policy", "", "Path to constitution YAML (required)")
	evalCmd.Flags().StringVar(&evalInput, "input", "", "Input context as a JSON object")
	evalCmd.Flags().StringVar(&evalInputFile, "input-file", "", "Read the input context from a JSON file")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "Emit the decision as JSON")
	evalCmd.Flags().BoolVar(&evalFirstOnly, "first-only", false, "Stop at the first violation")
	evalCmd.Flags().StringVar(&evalMissingKey, "on-missing-key", string(guard.MissingKeyBlock), "Missing field handling (block|ignore)")
	evalCmd.Flags().StringVar(&evalEvalError, "on-eval-error", string(guard.EvalErrorBlock), "Evaluation failure handling (block|raise)")
	_ = evalCmd.MarkFlagRequired("policy")
}

var evalCmd = &cobra.Command{
	Use:   "eval --policy constitution.yaml --input '{...}'",
	Short: "Evaluate one input context against a constitution",
	Long: "Compiles the constitution, verifies the input context once, and\n" +
		"prints the decision.\n\n" +
		"Exit code 0 when allowed, 1 when blocked.",
	RunE: runEval,
}

var (
	evalPassStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	evalBlockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func runEval(cmd *cobra.Command, args []string) error {
	constitution, err := guard.Load(evalPolicy)
	if err != nil {
		return err
	}

	cfg := guard.DefaultConfig()
	cfg.CollectAll = !evalFirstOnly
	cfg.OnMissingKey = guard.MissingKeyMode(evalMissingKey)
	cfg.OnEvalError = guard.EvalErrorMode(evalEvalError)
	if err := cfg.Validate(); err != nil {
		return err
	}

	evalCtx, err := readEvalInput()
	if err != nil {
		return err
	}

	decision, err := guard.New(constitution, cfg).Verify(cmd.Context(), evalCtx)
	if err != nil {
		return err
	}

	if evalJSON {
		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		printDecision(cmd, constitution.Name, decision.Allowed, decision.Violations)
	}

	if !decision.Allowed {
		os.Exit(1)
	}
	return nil
}

func printDecision(cmd *cobra.Command, name string, allowed bool, violations []string) {
	tag := "PASS"
	if !allowed {
		tag = "BLOCK"
	}
	if styledOutput() {
		if allowed {
			tag = evalPassStyle.Render(tag)
		} else {
			tag = evalBlockStyle.Render(tag)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tag, name)
	for _, v := range violations {
		fmt.Fprintf(cmd.OutOrStdout(), "  ✗ %s\n", v)
	}
}

func readEvalInput() (map[string]any, error) {
	if evalInput != "" && evalInputFile != "" {
		return nil, fmt.Errorf("--input and --input-file are mutually exclusive")
	}

	src := evalInput
	if evalInputFile != "" {
		data, err := os.ReadFile(evalInputFile)
		if err != nil {
			return nil, err
		}
		src = string(data)
	}
	if strings.TrimSpace(src) == "" {
		return map[string]any{}, nil
	}

	var evalCtx map[string]any
	if err := json.Unmarshal([]byte(src), &evalCtx); err != nil {
		return nil, fmt.Errorf("input context must be a JSON object: %w", err)
	}
	return evalCtx, nil
}
