package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/awsq/awsq/internal/telemetry"
)

// Registry holds the agent's tool set. Names are validated unique at
// construction so an unregistered name can only originate from the model,
// and that case dispatches to a well-defined failure result.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]*ToolDefinition
}

// NewRegistry builds a registry from defs, rejecting duplicate or empty names.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{byName: make(map[string]*ToolDefinition, len(defs))}
	for i := range defs {
		d := defs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("tool at index %d has an empty name", i)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		r.defs = append(r.defs, d)
		r.byName[d.Name] = &r.defs[len(r.defs)-1]
	}
	return r, nil
}

// Definitions returns the registered tools in registration order.
func (r *Registry) Definitions() []ToolDefinition { return r.defs }

// Params renders the tool set in the form advertised to the model.
func (r *Registry) Params() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.defs))
	for _, t := range r.defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// Execute dispatches an invocation by name. Unknown names return a failure
// Result naming the tool; nothing here ever panics or returns a Go error.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) Result {
	reqID, _ := telemetry.RequestIDFromContext(ctx)
	start := time.Now()

	def, ok := r.byName[name]
	if !ok {
		telemetry.Emit("tool_exec", map[string]any{
			"request_id":  reqID,
			"tool_name":   name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(input),
			"output_size": 0,
			"error":       "unknown tool",
		})
		return Fail("unknown tool: %s", name)
	}

	res := def.Function(ctx, input)

	fields := map[string]any{
		"request_id":  reqID,
		"tool_name":   name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(input),
		"output_size": len(res.JSON()),
	}
	if res.IsError() {
		// Keep the detailed message in the result returned to the model;
		// the event log only records that the tool failed.
		fields["error"] = "tool error"
	} else {
		fields["error"] = nil
	}
	telemetry.Emit("tool_exec", fields)
	return res
}
