package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/awsq/awsq/internal/sandbox"
	"github.com/awsq/awsq/tools"
)

type fakeSession struct {
	events  []sandbox.Event
	runErr  error
	stopErr error
	stopped bool
}

func (s *fakeSession) ID() string { return "fake-session" }
func (s *fakeSession) Run(context.Context, string) ([]sandbox.Event, error) {
	return s.events, s.runErr
}
func (s *fakeSession) Stop(context.Context) error {
	s.stopped = true
	return s.stopErr
}

type fakeInterpreter struct {
	session  *fakeSession
	startErr error
	gotTTL   time.Duration
}

func (f *fakeInterpreter) Start(_ context.Context, ttl time.Duration) (sandbox.Session, error) {
	f.gotTTL = ttl
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.session, nil
}

func codeExecResult(t *testing.T, interp sandbox.Interpreter, input string) tools.Result {
	t.Helper()
	def := tools.NewCodeExecTool(interp, discard)
	return def.Function(context.Background(), json.RawMessage(input))
}

func TestCodeExecTool_Success(t *testing.T) {
	fi := &fakeInterpreter{session: &fakeSession{events: []sandbox.Event{
		{Type: "text", Content: "hello "},
		{Type: "text", Content: "world\n"},
	}}}
	res := codeExecResult(t, fi, `{"code":"print('hello world')"}`)
	if res.IsError() {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	data := res.Data.(tools.CodeExecData)
	if data.Output != "hello world\n" {
		t.Errorf("output: got %q", data.Output)
	}
	if fi.gotTTL != 900*time.Second {
		t.Errorf("session ttl: got %v, want 900s", fi.gotTTL)
	}
	if !fi.session.stopped {
		t.Error("session was not stopped after success")
	}
}

func TestCodeExecTool_ErrorOutputClassifiedAsFailure(t *testing.T) {
	fi := &fakeInterpreter{session: &fakeSession{events: []sandbox.Event{
		{Type: "text", Content: "before crash\n"},
		{Type: "error", Content: "Traceback (most recent call last):\n"},
		{Type: "error", Content: "ZeroDivisionError: division by zero\n"},
	}}}
	res := codeExecResult(t, fi, `{"code":"1/0"}`)
	if !res.IsError() {
		t.Fatal("error output should classify the call as failed")
	}
	data := res.Data.(tools.CodeExecData)
	if data.Output != "before crash\n" {
		t.Errorf("text output: got %q", data.Output)
	}
	if data.ErrorOutput != "Traceback (most recent call last):\nZeroDivisionError: division by zero\n" {
		t.Errorf("error output concatenation order wrong: %q", data.ErrorOutput)
	}
	if !fi.session.stopped {
		t.Error("session was not stopped after error output")
	}
}

func TestCodeExecTool_SessionStoppedOnRunFailure(t *testing.T) {
	fi := &fakeInterpreter{session: &fakeSession{runErr: errors.New("backend gone")}}
	res := codeExecResult(t, fi, `{"code":"print(1)"}`)
	if !res.IsError() {
		t.Fatal("expected failure when execution cannot run")
	}
	if !fi.session.stopped {
		t.Error("session must be stopped even when Run fails")
	}
}

func TestCodeExecTool_StopFailureNotSurfaced(t *testing.T) {
	fi := &fakeInterpreter{session: &fakeSession{
		events:  []sandbox.Event{{Type: "text", Content: "ok"}},
		stopErr: errors.New("stop failed"),
	}}
	res := codeExecResult(t, fi, `{"code":"print('ok')"}`)
	if res.IsError() {
		t.Fatalf("stop failure must not affect the result: %s", res.Error)
	}
}

func TestCodeExecTool_StartFailure(t *testing.T) {
	res := codeExecResult(t, &fakeInterpreter{startErr: errors.New("no capacity")}, `{"code":"x"}`)
	if !res.IsError() {
		t.Fatal("expected failure when session cannot be acquired")
	}
}

func TestCodeExecTool_NilInterpreter(t *testing.T) {
	res := codeExecResult(t, nil, `{"code":"x"}`)
	if !res.IsError() {
		t.Fatal("expected failure with no sandbox configured")
	}
}
