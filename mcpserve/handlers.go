package mcpserve

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	cslcore "github.com/Flames4fun/csl-core"
	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// RunInput defines parameters for the csl_run tool.
type RunInput struct {
	Tool      string         `json:"tool" jsonschema:"name of the guarded tool to run"`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"arguments passed to the tool"`
}

// RunOutput contains the tool result or the block details.
type RunOutput struct {
	Result     json.RawMessage `json:"result,omitempty"`
	Blocked    bool            `json:"blocked,omitempty"`
	Violations []string        `json:"violations,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// VerifyInput defines parameters for the csl_verify tool.
type VerifyInput struct {
	Tool      string         `json:"tool" jsonschema:"name of the guarded tool to check"`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"arguments the call would carry"`
}

// VerifyOutput contains the dry-run decision.
type VerifyOutput struct {
	Tool       string   `json:"tool"`
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

// ToolsInput is empty, csl_tools takes no parameters.
type ToolsInput struct{}

// ToolsOutput lists the guarded tools.
type ToolsOutput struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolInfo describes one guarded tool.
type ToolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Schema      *tools.ToolSchema `json:"schema,omitempty"`
}

func (s *Server) handleRun(ctx context.Context, req *mcpsdk.CallToolRequest, input RunInput) (*mcpsdk.CallToolResult, RunOutput, error) {
	tool, ok := s.guarded.Get(input.Tool)
	if !ok {
		return &mcpsdk.CallToolResult{IsError: true}, RunOutput{
			Error: fmt.Sprintf("%v: %s", schema.ErrToolNotFound, input.Tool),
		}, nil
	}

	raw, err := marshalArguments(input.Arguments)
	if err != nil {
		return nil, RunOutput{}, err
	}

	result, err := tool.Execute(ctx, raw)
	if err != nil {
		if blocked, ok := schema.AsBlocked(err); ok {
			return &mcpsdk.CallToolResult{IsError: true}, RunOutput{
				Blocked:    true,
				Violations: blocked.Violations,
			}, nil
		}
		return nil, RunOutput{}, err
	}
	return nil, RunOutput{Result: result}, nil
}

func (s *Server) handleVerify(ctx context.Context, req *mcpsdk.CallToolRequest, input VerifyInput) (*mcpsdk.CallToolResult, VerifyOutput, error) {
	tool, ok := s.guarded.Get(input.Tool)
	if !ok {
		return &mcpsdk.CallToolResult{IsError: true}, VerifyOutput{Tool: input.Tool}, nil
	}
	guarded, ok := tool.(*cslcore.GuardedTool)
	if !ok {
		return &mcpsdk.CallToolResult{IsError: true}, VerifyOutput{Tool: input.Tool}, nil
	}

	raw, err := marshalArguments(input.Arguments)
	if err != nil {
		return nil, VerifyOutput{}, err
	}

	out := VerifyOutput{Tool: input.Tool}
	switch err := guarded.Check(ctx, raw); {
	case err == nil:
		out.Allowed = true
	case schema.IsBlocked(err):
		if blocked, ok := schema.AsBlocked(err); ok {
			out.Violations = blocked.Violations
		}
	default:
		return nil, VerifyOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleTools(ctx context.Context, req *mcpsdk.CallToolRequest, input ToolsInput) (*mcpsdk.CallToolResult, ToolsOutput, error) {
	out := ToolsOutput{}
	for _, t := range s.guarded.List() {
		out.Tools = append(out.Tools, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			Schema:      t.Schema(),
		})
	}
	return nil, out, nil
}

// marshalArguments turns the keyword arguments back into the raw form the
// tool contract expects. A nil map becomes an empty call.
func marshalArguments(args map[string]any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return json.Marshal(args)
}
