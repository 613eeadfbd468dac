package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/awsq/awsq/internal/telemetry"
	"github.com/awsq/awsq/tools"
)

// MaxToolRounds bounds the number of tool round-trips in one request. When
// the model still requests tools after the last round, the loop falls
// through and streams that response anyway; this is a safety valve that
// bounds remote-service cost, not an error.
const MaxToolRounds = 5

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Reply is one model response, already fully received. Chunks preserves the
// text delta boundaries in arrival order; Text is their concatenation.
type Reply struct {
	Chunks     []string
	Text       string
	ToolCalls  []ToolCall
	StopReason anthropic.StopReason
	Param      anthropic.MessageParam
}

// Streamer is the inference-service contract. One call is one full model
// response; implementations stream internally and report delta boundaries
// through Reply.Chunks.
type Streamer interface {
	Stream(ctx context.Context, params anthropic.MessageNewParams) (*Reply, error)
}

// Runner drives the tool-use loop for one request at a time.
type Runner struct {
	streamer  Streamer
	registry  *tools.Registry
	model     anthropic.Model
	maxTokens int64
	system    string
	logger    *slog.Logger
}

// New builds a Runner. logger may be nil.
func New(streamer Streamer, registry *tools.Registry, model anthropic.Model, maxTokens int64, system string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		streamer:  streamer,
		registry:  registry,
		model:     model,
		maxTokens: maxTokens,
		system:    system,
		logger:    logger,
	}
}

// Run sends the assembled conversation through the tool-use loop and streams
// the final answer's chunks to sink in arrival order. The returned string is
// the full final answer text. A sink error aborts the stream.
func (r *Runner) Run(ctx context.Context, conv []anthropic.MessageParam, sink func(string) error) (string, error) {
	reqID, ok := telemetry.RequestIDFromContext(ctx)
	if !ok {
		reqID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		ctx = telemetry.WithRequestID(ctx, reqID)
	}

	for round := 0; ; round++ {
		params := anthropic.MessageNewParams{
			Model:     r.model,
			MaxTokens: r.maxTokens,
			Messages:  conv,
			Tools:     r.registry.Params(),
		}
		if r.system != "" {
			params.System = []anthropic.TextBlockParam{{Text: r.system}}
		}

		reply, err := r.streamer.Stream(ctx, params)
		if err != nil {
			return "", err
		}
		telemetry.Emit("model_step", map[string]any{
			"request_id":  reqID,
			"round":       round,
			"stop_reason": string(reply.StopReason),
			"tool_calls":  len(reply.ToolCalls),
		})

		wantsTools := reply.StopReason == anthropic.StopReasonToolUse && len(reply.ToolCalls) > 0
		if wantsTools && round < MaxToolRounds {
			conv = append(conv, reply.Param)
			results, err := r.execTools(ctx, reply.ToolCalls, sink)
			if err != nil {
				return "", err
			}
			conv = append(conv, anthropic.NewUserMessage(results...))
			continue
		}

		if wantsTools {
			// Round cap reached with tools still requested; stream what we
			// have. Whether this should surface an error instead is an open
			// point, so it is at least made visible.
			r.logger.Warn("tool round cap reached; streaming last response",
				"rounds", round, "pending_tool_calls", len(reply.ToolCalls))
			telemetry.Emit("tool_rounds_exhausted", map[string]any{
				"request_id": reqID,
				"rounds":     round,
			})
		}

		for _, chunk := range reply.Chunks {
			if err := sink(chunk); err != nil {
				return "", fmt.Errorf("stream final answer: %w", err)
			}
		}
		return reply.Text, nil
	}
}

// execTools dispatches each requested invocation in order and returns one
// tool_result block per call, IDs preserved pairwise. A progress chunk per
// tool goes to sink so the caller sees activity during long executions.
func (r *Runner) execTools(ctx context.Context, calls []ToolCall, sink func(string) error) ([]anthropic.ContentBlockParamUnion, error) {
	results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
	for _, call := range calls {
		if err := sink(fmt.Sprintf("\n🔧 %s を実行中...\n", call.Name)); err != nil {
			return nil, fmt.Errorf("stream tool progress: %w", err)
		}
		res := r.registry.Execute(ctx, call.Name, call.Input)
		if res.IsError() {
			r.logger.Warn("tool returned failure", "tool", call.Name, "error", res.Error)
		}
		results = append(results, anthropic.NewToolResultBlock(call.ID, res.JSON(), res.IsError()))
	}
	return results, nil
}
