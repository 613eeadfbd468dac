package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/awsq/awsq/internal/sandbox"
)

// sessionTTL bounds the lifetime of an interpreter session.
const sessionTTL = 900 * time.Second

// CodeExecInput is the model-facing input schema for execute_python.
type CodeExecInput struct {
	Code string `json:"code" jsonschema_description:"Python code to execute in the sandbox."`
}

var codeExecInputSchema = GenerateSchema[CodeExecInput]()

// CodeExecData is the payload of execute_python. Output and ErrorOutput each
// concatenate their event category in arrival order.
type CodeExecData struct {
	Output      string `json:"output"`
	ErrorOutput string `json:"error_output,omitempty"`
}

// NewCodeExecTool builds the execute_python tool over the given interpreter.
// A nil interpreter means no sandbox backend is configured; the tool then
// reports itself unavailable instead of erroring out of the loop.
func NewCodeExecTool(interp sandbox.Interpreter, logger *slog.Logger) ToolDefinition {
	return ToolDefinition{
		Name:        "execute_python",
		Description: "サンドボックス環境で Python コードを実行し、出力を返します。",
		InputSchema: codeExecInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in CodeExecInput
			if err := json.Unmarshal(input, &in); err != nil {
				return Fail("invalid input: %v", err)
			}
			if in.Code == "" {
				return Fail("code is required")
			}
			if interp == nil {
				return Fail("code execution backend is not configured")
			}

			sess, err := interp.Start(ctx, sessionTTL)
			if err != nil {
				return Fail("failed to acquire sandbox session: %v", err)
			}
			// The session is released on every exit path. A failed stop is
			// logged and never escalated.
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()
				if err := sess.Stop(stopCtx); err != nil {
					logger.Warn("failed to stop sandbox session", "session", sess.ID(), "error", err)
				}
			}()

			events, err := sess.Run(ctx, in.Code)
			if err != nil {
				return Fail("failed to execute code: %v", err)
			}

			var out, errOut strings.Builder
			for _, e := range events {
				switch e.Type {
				case "text":
					out.WriteString(e.Content)
				case "error":
					errOut.WriteString(e.Content)
				}
			}
			data := CodeExecData{Output: out.String(), ErrorOutput: errOut.String()}
			if errOut.Len() > 0 {
				// Ran, but produced error output: a defined failure with the
				// collected streams attached.
				res := Fail("execution produced error output")
				res.Data = data
				return res
			}
			return OK(data)
		},
	}
}
