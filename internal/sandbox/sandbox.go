// Package sandbox talks to the remote code-interpreter backend. A session
// is a scoped resource: callers must Stop it on every exit path.
package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/awsq/awsq/internal/httpkit"
)

// Event is one streamed output event from an execution. Type is "text" for
// normal output and "error" for error output.
type Event struct {
	Type    string
	Content string
}

// Session is a live interpreter session.
type Session interface {
	ID() string
	Run(ctx context.Context, code string) ([]Event, error)
	Stop(ctx context.Context) error
}

// Interpreter creates interpreter sessions.
type Interpreter interface {
	Start(ctx context.Context, ttl time.Duration) (Session, error)
}

// Client is the HTTP implementation of Interpreter.
//
// Wire contract with the backend:
//
//	POST   {base}/sessions                {"ttl_seconds": n}  -> {"session_id": "..."}
//	POST   {base}/sessions/{id}/execute   {"code": "..."}     -> NDJSON stream of
//	                                      {"type": "text"|"error", "content": "..."}
//	DELETE {base}/sessions/{id}
type Client struct {
	base   string
	client *http.Client
}

// NewClient returns a Client for the backend at base. The HTTP client has no
// overall timeout because execute responses stream; per-call deadlines come
// from the caller's context.
func NewClient(base string) *Client {
	return &Client{
		base:   base,
		client: httpkit.NewClient(httpkit.WithTimeout(0)),
	}
}

type httpSession struct {
	c  *Client
	id string
}

// Start acquires a new session with the given lifetime.
func (c *Client) Start(ctx context.Context, ttl time.Duration) (Session, error) {
	body, _ := json.Marshal(map[string]any{"ttl_seconds": int(ttl.Seconds())})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sandbox: start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sandbox: start session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("sandbox: start session: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 512))
	}

	raw := httpkit.ReadErrorBody(resp.Body, 4096)
	id := gjson.Get(raw, "session_id").String()
	if id == "" {
		return nil, fmt.Errorf("sandbox: start session: missing session_id in response")
	}
	return &httpSession{c: c, id: id}, nil
}

func (s *httpSession) ID() string { return s.id }

// Run submits code and collects streamed output events in arrival order.
func (s *httpSession) Run(ctx context.Context, code string) ([]Event, error) {
	body, _ := json.Marshal(map[string]string{"code": code})
	url := fmt.Sprintf("%s/sessions/%s/execute", s.c.base, s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sandbox: execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sandbox: execute: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sandbox: execute: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 512))
	}

	var events []Event
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		parsed := gjson.ParseBytes(line)
		typ := parsed.Get("type").String()
		if typ != "text" && typ != "error" {
			// Unknown event kinds are skipped, not fatal.
			continue
		}
		events = append(events, Event{Type: typ, Content: parsed.Get("content").String()})
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("sandbox: read event stream: %w", err)
	}
	return events, nil
}

// Stop releases the session.
func (s *httpSession) Stop(ctx context.Context) error {
	url := fmt.Sprintf("%s/sessions/%s", s.c.base, s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("sandbox: stop request: %w", err)
	}
	resp, err := s.c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sandbox: stop session: %w", err)
	}
	httpkit.DrainAndClose(resp.Body, 1024)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("sandbox: stop session: status %d", resp.StatusCode)
	}
	return nil
}
