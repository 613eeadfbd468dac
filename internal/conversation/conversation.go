// Package conversation builds the ordered message sequence sent to the
// model: optional recalled long-term context, then caller-supplied history,
// then the new user turn. Order is significant and preserved exactly.
package conversation

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Turn is one role-tagged unit of caller-supplied history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// recalledPreamble introduces injected long-term memory so the model can
// tell it apart from the live conversation.
const recalledPreamble = "以前の会話から関連する情報:\n"

// Assemble builds the message list for the model. History turns with roles
// other than user/assistant, or with empty content, are dropped. A recalled
// context turn is prepended only when recalled is non-empty.
func Assemble(recalled string, history []Turn, prompt string) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(history)+2)

	if recalled != "" {
		msgs = append(msgs, anthropic.NewAssistantMessage(
			anthropic.NewTextBlock(recalledPreamble+recalled)))
	}

	for _, t := range history {
		if t.Content == "" {
			continue
		}
		switch t.Role {
		case "user":
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
	return msgs
}
