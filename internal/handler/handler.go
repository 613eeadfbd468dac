// Package handler exposes the runtime HTTP contract: GET /ping for health
// and POST /invocations for one streamed agent exchange.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/awsq/awsq/internal/conversation"
	"github.com/awsq/awsq/internal/telemetry"
	"github.com/awsq/awsq/memory"
)

// Fixed user-facing strings. Raw error details never reach the caller; they
// go to the log instead.
const (
	greeting        = "こんにちは！AWS についてのご質問をお待ちしています。"
	msgAccessDenied = "Bedrock モデルへのアクセス権限がありません。"
	msgThrottled    = "リクエストが制限されています。しばらく待ってください。"
	msgGeneric      = "エラーが発生しました。しばらく待ってから再度お試しください。"
)

// InvocationRequest is the /invocations payload. actorId and sessionId are
// optional; without an actor the long-term memory round-trip is skipped.
type InvocationRequest struct {
	Prompt    string              `json:"prompt"`
	SessionID string              `json:"sessionId"`
	ActorID   string              `json:"actorId"`
	History   []conversation.Turn `json:"history"`
}

// Orchestrator runs one assembled conversation and streams chunks to sink.
type Orchestrator interface {
	Run(ctx context.Context, conv []anthropic.MessageParam, sink func(string) error) (string, error)
}

// Handler wires the orchestrator and the memory adapter to HTTP.
type Handler struct {
	orch   Orchestrator
	mem    *memory.Adapter
	logger *slog.Logger
}

func New(orch Orchestrator, mem *memory.Adapter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, mem: mem, logger: logger}
}

// Router builds the runtime's route table.
func Router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/ping", h.Ping)
	r.Post("/invocations", h.Invoke)
	return r
}

func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "Healthy"})
}

// Invoke streams one exchange as chunked plain text. Chunks are flushed as
// they arrive so clients see tool progress and model text incrementally.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	ctx := telemetry.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))

	var req InvocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	telemetry.EmitPromptFeatures(ctx, req.Prompt)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)
	sink := func(chunk string) error {
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if req.Prompt == "" {
		_ = sink(greeting)
		return
	}

	recalled := ""
	if req.ActorID != "" {
		h.mem.PersistTurn(ctx, req.ActorID, req.SessionID, "user", req.Prompt)
		recalled = h.mem.RecallContext(ctx, req.ActorID, req.Prompt, memory.DefaultRecallTopK)
	}

	conv := conversation.Assemble(recalled, req.History, req.Prompt)
	final, err := h.orch.Run(ctx, conv, sink)
	if err != nil {
		h.logger.Error("invocation failed", "error", err, "actor", req.ActorID)
		_ = sink(errorMessage(err))
		return
	}

	if req.ActorID != "" && final != "" {
		h.mem.PersistTurn(ctx, req.ActorID, req.SessionID, "assistant", final)
	}
}

// errorMessage maps an orchestrator failure to the fixed Japanese strings.
func errorMessage(err error) string {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusForbidden:
			return msgAccessDenied
		case http.StatusTooManyRequests:
			return msgThrottled
		default:
			return fmt.Sprintf("AWS API エラー: %d", apiErr.StatusCode)
		}
	}
	return msgGeneric
}
