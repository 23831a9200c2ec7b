// Package tools defines the callable tool contract: named,
// schema-described units with a blocking execution path and an optional
// suspendable one.
package tools

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/Flames4fun/csl-core/schema"
)

// Tool is a named callable unit. Execute blocks until the tool finishes.
type Tool interface {
	Name() string
	Description() string
	Schema() *ToolSchema
	Capabilities() []Capability
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// AsyncTool is implemented by tools that provide their own suspendable
// execution path. Tools without one are served by RunAsync's fallback.
type AsyncTool interface {
	Tool
	ExecuteAsync(ctx context.Context, input json.RawMessage) (<-chan ToolResult, error)
}

// Capability defines tool side effects.
type Capability string

const (
	CapabilityNetwork Capability = "network"
	CapabilityFile    Capability = "file"
	CapabilityUnsafe  Capability = "unsafe"
)

// ToolSchema describes a tool JSON schema.
type ToolSchema struct {
	Type        string                 `json:"type"`
	Properties  map[string]interface{} `json:"properties"`
	Required    []string               `json:"required"`
	Description string                 `json:"description"`
}

// ToolResult represents an asynchronous tool execution result.
type ToolResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RunAsync executes a tool through its suspendable path. A tool that
// implements AsyncTool is delegated to directly; any other tool has its
// blocking Execute run in a goroutine feeding a buffered result channel,
// so the caller is never stalled.
func RunAsync(ctx context.Context, t Tool, input json.RawMessage) (<-chan ToolResult, error) {
	if at, ok := t.(AsyncTool); ok {
		return at.ExecuteAsync(ctx, input)
	}

	resultChan := make(chan ToolResult, 1)
	go func() {
		defer close(resultChan)

		result, err := t.Execute(ctx, input)
		if err != nil {
			resultChan <- ToolResult{
				Success: false,
				Error:   err.Error(),
			}
		} else {
			resultChan <- ToolResult{
				Success: true,
				Data:    result,
			}
		}
	}()

	return resultChan, nil
}

// BaseTool provides shared tool functionality.
type BaseTool struct {
	name        string
	description string
	schema      *ToolSchema
	caps        []Capability
}

// NewBaseTool creates a base tool.
func NewBaseTool(name, description string, schema *ToolSchema) *BaseTool {
	return &BaseTool{
		name:        name,
		description: description,
		schema:      schema,
	}
}

func (t *BaseTool) Name() string {
	return t.name
}

func (t *BaseTool) Description() string {
	return t.description
}

func (t *BaseTool) Schema() *ToolSchema {
	return t.schema
}

func (t *BaseTool) Capabilities() []Capability {
	return append([]Capability(nil), t.caps...)
}

// WithCapabilities sets capability markers.
func (t *BaseTool) WithCapabilities(caps ...Capability) *BaseTool {
	t.caps = append([]Capability(nil), caps...)
	return t
}

// Execute is a default implementation and should be overridden.
func (t *BaseTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return nil, schema.NewToolError(t.name, "execute", schema.ErrToolExecutionFailed)
}

// ValidateInput performs lightweight validation against the schema's
// required fields.
func (t *BaseTool) ValidateInput(input json.RawMessage) error {
	if t.schema == nil {
		return nil
	}

	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if len(t.schema.Required) == 0 {
			return nil
		}
		return schema.NewValidationError("input", string(input), "required field missing")
	}
	var data map[string]interface{}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return schema.NewValidationError("input", string(trimmed), "invalid JSON format")
	}

	for _, required := range t.schema.Required {
		if _, exists := data[required]; !exists {
			return schema.NewValidationError(required, nil, "required field missing")
		}
	}

	return nil
}

// CreateToolSchema builds a schema.
func CreateToolSchema(description string, properties map[string]interface{}, required []string) *ToolSchema {
	return &ToolSchema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// StringProperty defines a string property.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// NumberProperty defines a numeric property.
func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// BooleanProperty defines a boolean property.
func BooleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

// ArrayProperty defines an array property.
func ArrayProperty(description string, itemType string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": itemType,
		},
	}
}

// ObjectProperty defines an object property.
func ObjectProperty(description string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties":  properties,
	}
}
