package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	cslcore "github.com/Flames4fun/csl-core"
	"github.com/Flames4fun/csl-core/guard"
	"github.com/Flames4fun/csl-core/mcpserve"
	"github.com/Flames4fun/csl-core/tools"
	"github.com/Flames4fun/csl-core/tools/builtin"
)

var (
	servePolicy   string
	serveInject   []string
	serveIdentity string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePolicy, "policy", "", "Path to constitution YAML (required)")
	serveCmd.Flags().StringArrayVar(&serveInject, "inject", nil, "Extra context field as key=value (repeatable)")
	serveCmd.Flags().StringVar(&serveIdentity, "identity-field", "tool_name", "Context field carrying the tool name")
	_ = serveCmd.MarkFlagRequired("policy")
}

var serveCmd = &cobra.Command{
	Use:   "serve --policy constitution.yaml",
	Short: "Serve the builtin tools behind the constitution over MCP",
	Long: "Wraps the builtin tools (calculator, transfer, fetch) with the\n" +
		"constitution and serves them as an MCP server on stdio. Every call\n" +
		"an MCP client makes is verified before the tool runs.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	constitution, err := guard.Load(servePolicy)
	if err != nil {
		return err
	}

	inject, err := parseInject(serveInject)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry()
	stock := []tools.Tool{
		builtin.NewCalculator(),
		builtin.NewTransfer(),
		builtin.NewFetch(0),
	}
	for _, t := range stock {
		if err := registry.Register(t); err != nil {
			return err
		}
	}

	opts := []cslcore.Option{cslcore.WithIdentityField(serveIdentity)}
	if len(inject) > 0 {
		opts = append(opts, cslcore.WithInject(inject))
	}

	srv, err := mcpserve.New(mcpserve.Config{
		Name:     "csl",
		Version:  version,
		Registry: registry,
		Verifier: guard.New(constitution, guard.DefaultConfig()),
		Options:  opts,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := constitution.Name
	if name == "" {
		name = servePolicy
	}
	fmt.Fprintf(os.Stderr, "csl MCP server running on stdio (constitution: %s)\n", name)

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// parseInject turns repeated key=value flags into the injected context.
func parseInject(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	inject := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --inject %q, want key=value", pair)
		}
		inject[key] = value
	}
	return inject, nil
}
