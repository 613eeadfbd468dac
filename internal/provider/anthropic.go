// Package provider builds the inference-service client and adapts its
// streaming API to the runner's Reply contract.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/awsq/awsq/internal/runner"
)

// NewClient builds the API client. With Bedrock enabled, credentials and
// request signing come from the default AWS chain in the given region;
// otherwise ANTHROPIC_API_KEY from the environment is used.
func NewClient(ctx context.Context, bedrockEnabled bool, region string) (*anthropic.Client, error) {
	if bedrockEnabled {
		var optFns []func(*awsconfig.LoadOptions) error
		if region != "" {
			optFns = append(optFns, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load bedrock config: %w", err)
		}
		c := anthropic.NewClient(bedrock.WithConfig(cfg))
		return &c, nil
	}
	c := anthropic.NewClient()
	return &c, nil
}

// Streamer adapts Messages.NewStreaming to runner.Streamer. One Stream call
// consumes one full server-sent event stream and returns the accumulated
// message with its text delta boundaries preserved.
type Streamer struct {
	api *anthropic.Client
}

func NewStreamer(api *anthropic.Client) *Streamer {
	return &Streamer{api: api}
}

func (s *Streamer) Stream(ctx context.Context, params anthropic.MessageNewParams) (*runner.Reply, error) {
	stream := s.api.Messages.NewStreaming(ctx, params)

	msg := anthropic.Message{}
	reply := &runner.Reply{}
	var text strings.Builder

	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return nil, fmt.Errorf("accumulate stream event: %w", err)
		}
		if variant, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := variant.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				text.WriteString(delta.Text)
				reply.Chunks = append(reply.Chunks, delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("message stream: %w", err)
	}

	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			reply.ToolCalls = append(reply.ToolCalls, runner.ToolCall{
				ID:    tu.ID,
				Name:  tu.Name,
				Input: json.RawMessage(tu.JSON.Input.Raw()),
			})
		}
	}

	reply.Text = text.String()
	reply.StopReason = msg.StopReason
	reply.Param = msg.ToParam()
	return reply, nil
}
