// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - Result: normalized success/failure outcome, embedded as a JSON string
//     inside tool_result blocks.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Agent tools: get_aws_service_info, get_aws_news, execute_python,
//     browse_web.
//   - Invariants: tool failures become failure Results, never Go errors;
//     tool_use and its corresponding tool_result remain adjacent within a turn.
package tools
