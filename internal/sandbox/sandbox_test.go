package sandbox_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/awsq/awsq/internal/sandbox"
)

func TestClient_SessionLifecycle(t *testing.T) {
	var stopped atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/sessions":
			fmt.Fprint(w, `{"session_id":"sess-1"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/sessions/sess-1/execute":
			fmt.Fprintln(w, `{"type":"text","content":"hello"}`)
			fmt.Fprintln(w, `{"type":"progress","content":"ignored"}`)
			fmt.Fprintln(w, `{"type":"error","content":"boom"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/sessions/sess-1":
			stopped.Store(true)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := sandbox.NewClient(srv.URL)

	sess, err := client.Start(ctx, 900*time.Second)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.ID() != "sess-1" {
		t.Errorf("session id: got %q", sess.ID())
	}

	events, err := sess.Run(ctx, `print("hello")`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []sandbox.Event{
		{Type: "text", Content: "hello"},
		{Type: "error", Content: "boom"},
	}
	if len(events) != len(want) {
		t.Fatalf("events: got %d want %d (%+v)", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: got %+v want %+v", i, events[i], want[i])
		}
	}

	if err := sess.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopped.Load() {
		t.Error("backend never saw the stop request")
	}
}

func TestClient_StartMissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	if _, err := sandbox.NewClient(srv.URL).Start(context.Background(), time.Minute); err == nil {
		t.Fatal("expected error for missing session_id")
	}
}
