package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// ToolDefinition binds a tool name and JSON input schema to its executor.
// Function never returns a Go error: every failure mode is folded into a
// failure Result so a misbehaving tool cannot abort the agent loop.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    func(ctx context.Context, input json.RawMessage) Result
}

// Result is the normalized outcome of a tool invocation. It is serialized
// as a JSON string into the tool_result content block, so it must always
// marshal cleanly.
type Result struct {
	Status string `json:"status"` // "success" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK returns a success Result carrying data.
func OK(data any) Result {
	return Result{Status: "success", Data: data}
}

// Fail returns a failure Result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Status: "error", Error: fmt.Sprintf(format, args...)}
}

// IsError reports whether the result represents a failure.
func (r Result) IsError() bool { return r.Status != "success" }

// JSON renders the result as the string payload embedded in a tool_result
// block. A marshal failure degrades to a minimal error payload rather than
// surfacing upward.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","error":"unserializable tool result: %s"}`, err)
	}
	return string(b)
}

// GenerateSchema derives the Anthropic tool input schema from a Go struct.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}
