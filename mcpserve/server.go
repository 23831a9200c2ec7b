// Package mcpserve exposes guarded tools over the Model Context Protocol.
// Every tool handed to the server is wrapped before registration, so an
// MCP client can only reach tools through the constitution check.
package mcpserve

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	cslcore "github.com/Flames4fun/csl-core"
	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// Config holds MCP server configuration. Registry supplies the bare tools;
// the server wraps each of them with Verifier and Options on construction.
type Config struct {
	Name     string
	Version  string
	Registry *tools.Registry
	Verifier cslcore.Verifier
	Options  []cslcore.Option
}

// Server serves a registry of guarded tools on an MCP transport.
type Server struct {
	mcpServer *mcpsdk.Server
	guarded   *tools.Registry
}

// New wraps every registry tool behind cfg.Verifier and registers the MCP
// tool surface.
func New(cfg Config) (*Server, error) {
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("%w: verifier is required", schema.ErrInvalidInput)
	}
	if cfg.Registry == nil {
		cfg.Registry = tools.NewRegistry()
	}
	if cfg.Name == "" {
		cfg.Name = "csl"
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}

	guarded := tools.NewRegistry()
	for _, t := range cslcore.GuardTools(cfg.Registry.List(), cfg.Verifier, cfg.Options...) {
		if err := guarded.Register(t); err != nil {
			return nil, err
		}
	}

	s := &Server{guarded: guarded}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "csl_run",
		Description: "Run a guarded tool. A call the constitution blocks returns an error with the violation list and never reaches the tool.",
	}, s.handleRun)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "csl_verify",
		Description: "Check whether a tool call would pass the constitution without executing it (dry-run).",
	}, s.handleVerify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "csl_tools",
		Description: "List the guarded tools with their descriptions and input schemas.",
	}, s.handleTools)
}
