package cslcore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// recordingVerifier scripts one decision (or error) and snapshots every
// context it is asked to evaluate.
type recordingVerifier struct {
	mu       sync.Mutex
	contexts []map[string]any
	decision schema.Decision
	err      error
}

func allowAll() *recordingVerifier {
	return &recordingVerifier{decision: schema.Allow()}
}

func denyWith(violations ...string) *recordingVerifier {
	return &recordingVerifier{decision: schema.Block(violations...)}
}

func failWith(err error) *recordingVerifier {
	return &recordingVerifier{err: err}
}

func (v *recordingVerifier) Verify(ctx context.Context, evalCtx map[string]any) (schema.Decision, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	snapshot := make(map[string]any, len(evalCtx))
	for k, val := range evalCtx {
		snapshot[k] = val
	}
	v.contexts = append(v.contexts, snapshot)

	if v.err != nil {
		return schema.Decision{}, v.err
	}
	return v.decision, nil
}

func (v *recordingVerifier) calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.contexts)
}

func (v *recordingVerifier) lastContext() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.contexts) == 0 {
		return nil
	}
	return v.contexts[len(v.contexts)-1]
}

// recordingTool captures the exact bytes each Execute call received.
type recordingTool struct {
	mu     sync.Mutex
	name   string
	schema *tools.ToolSchema
	inputs []json.RawMessage
	output json.RawMessage
	err    error
}

func newRecordingTool(name string) *recordingTool {
	return &recordingTool{
		name:   name,
		schema: tools.CreateToolSchema("records executions", nil, nil),
		output: json.RawMessage(`"done"`),
	}
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "records executions" }

func (t *recordingTool) Schema() *tools.ToolSchema {
	return t.schema
}

func (t *recordingTool) Capabilities() []tools.Capability {
	return []tools.Capability{tools.CapabilityUnsafe}
}

func (t *recordingTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, append(json.RawMessage(nil), input...))
	return t.output, t.err
}

func (t *recordingTool) execCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inputs)
}

func (t *recordingTool) lastInput() json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inputs) == 0 {
		return nil
	}
	return t.inputs[len(t.inputs)-1]
}

// echoTool returns its input bytes unchanged.
type echoTool struct {
	*recordingTool
}

func (t *echoTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, append(json.RawMessage(nil), input...))
	return input, nil
}

// streamingTool is a recordingTool with its own suspendable path.
type streamingTool struct {
	*recordingTool
	asyncCalls int
}

func (t *streamingTool) ExecuteAsync(ctx context.Context, input json.RawMessage) (<-chan tools.ToolResult, error) {
	t.mu.Lock()
	t.asyncCalls++
	t.mu.Unlock()

	ch := make(chan tools.ToolResult, 1)
	ch <- tools.ToolResult{Success: true, Data: t.output}
	close(ch)
	return ch, nil
}
