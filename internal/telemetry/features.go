package telemetry

import (
	"context"
	"strings"
	"unicode/utf8"
)

// PromptFeatures holds size features of an incoming prompt. Only counts are
// recorded so prompt content never lands in the event log.
type PromptFeatures struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// CountPromptFeatures computes byte, rune, word, and line counts for s.
func CountPromptFeatures(s string) PromptFeatures {
	lines := 0
	if s != "" {
		lines = 1 + strings.Count(s, "\n")
	}
	return PromptFeatures{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: lines,
	}
}

// EmitPromptFeatures records size features of the incoming prompt under the
// current request ID.
func EmitPromptFeatures(ctx context.Context, prompt string) {
	if !ObserveEnabled() {
		return
	}
	reqID, _ := RequestIDFromContext(ctx)
	f := CountPromptFeatures(prompt)
	Emit("prompt_features", map[string]any{
		"request_id": reqID,
		"prompt": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
