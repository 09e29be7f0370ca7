/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openAI struct {
	client openai.Client
	model  string
	cfg    config
}

// newOpenAI creates a chat completions backend. The base URL may point at any
// OpenAI compatible endpoint.
func newOpenAI(model string, cfg config) (backend, error) {
	if cfg.apiKey == "" {
		return nil, errors.New("openai requires an api key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.httpClient))
	}
	return &openAI{
		client: openai.NewClient(opts...),
		model:  model,
		cfg:    cfg,
	}, nil
}

func (o *openAI) generate(ctx context.Context, instruction, content string) (reply, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(content),
		},
		MaxCompletionTokens: openai.Int(o.cfg.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if !reasoningModel(o.model) {
		params.Temperature = openai.Float(o.cfg.temperature)
		params.TopP = openai.Float(o.cfg.topP)
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return reply{}, err
	}

	r := reply{
		inputTokens:  resp.Usage.PromptTokens,
		outputTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		r.text = resp.Choices[0].Message.Content
	}
	return r, nil
}
