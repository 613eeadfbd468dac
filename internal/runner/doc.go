// Package runner coordinates message exchange with the inference service
// and dispatches tool calls.
//
// Invariants:
//   - every tool_use block in an assistant turn is answered by exactly one
//     tool_result block, with the same invocation ID, in the immediately
//     following user turn;
//   - tool results are appended in the order the model issued the
//     corresponding tool_use blocks;
//   - the loop performs at most MaxToolRounds tool round-trips, then streams
//     the last model response regardless of its stop reason.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
