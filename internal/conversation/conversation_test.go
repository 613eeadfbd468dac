package conversation_test

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/awsq/awsq/internal/conversation"
)

func roles(msgs []anthropic.MessageParam) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, string(m.Role))
	}
	return out
}

func TestAssemble_OrderAndFiltering(t *testing.T) {
	history := []conversation.Turn{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "system", Content: "should be dropped"},
		{Role: "user", Content: ""},
		{Role: "user", Content: "second question"},
	}

	msgs := conversation.Assemble("recalled fact", history, "new prompt")

	wantRoles := []string{"assistant", "user", "assistant", "user", "user"}
	got := roles(msgs)
	if len(got) != len(wantRoles) {
		t.Fatalf("message count: got %d want %d (%v)", len(got), len(wantRoles), got)
	}
	for i := range wantRoles {
		if got[i] != wantRoles[i] {
			t.Errorf("role[%d]: got %q want %q", i, got[i], wantRoles[i])
		}
	}
}

func TestAssemble_NoRecalledContext(t *testing.T) {
	msgs := conversation.Assemble("", nil, "hello")
	if len(msgs) != 1 {
		t.Fatalf("expected only the user turn, got %d messages", len(msgs))
	}
	if msgs[0].Role != anthropic.MessageParamRoleUser {
		t.Errorf("role: got %q", msgs[0].Role)
	}
}

func TestAssemble_EmptyHistory(t *testing.T) {
	msgs := conversation.Assemble("context", nil, "prompt")
	if len(msgs) != 2 {
		t.Fatalf("expected recalled turn + user turn, got %d", len(msgs))
	}
	if msgs[0].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("recalled turn role: got %q", msgs[0].Role)
	}
}
