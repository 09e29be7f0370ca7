/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

type claude struct {
	client anthropic.Client
	model  string
	cfg    config
}

// newClaude creates a Claude backend. Vertex AI is used when a project is
// configured, otherwise the Anthropic API.
func newClaude(ctx context.Context, model string, cfg config) (backend, error) {
	// Retries are owned by the caller's queue.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	switch {
	case cfg.projectID != "":
		opts = append(opts, vertex.WithGoogleAuth(ctx, cfg.region, cfg.projectID))
	case cfg.apiKey != "":
		opts = append(opts, option.WithAPIKey(cfg.apiKey))
	default:
		return nil, errors.New("claude requires either vertex or an api key")
	}
	if cfg.baseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.httpClient))
	}

	return &claude{
		client: anthropic.NewClient(opts...),
		model:  model,
		cfg:    cfg,
	}, nil
}

func (c *claude) generate(ctx context.Context, instruction, content string) (reply, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.cfg.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: instruction}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(content))},
		Temperature: anthropic.Float(c.cfg.temperature),
		TopP:        anthropic.Float(c.cfg.topP),
	})
	if err != nil {
		return reply{}, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return reply{
		text:         text.String(),
		inputTokens:  msg.Usage.InputTokens,
		outputTokens: msg.Usage.OutputTokens,
	}, nil
}
