/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type google struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// newGoogle creates a Gemini backend on Vertex AI or the Gemini API.
func newGoogle(ctx context.Context, model string, cfg config) (backend, error) {
	cc := &genai.ClientConfig{
		HTTPClient: cfg.httpClient,
	}
	switch {
	case cfg.projectID != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.projectID
		cc.Location = cfg.region
	case cfg.apiKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.apiKey
	default:
		return nil, errors.New("gemini requires either vertex or an api key")
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	return &google{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(cfg.temperature)),
			TopP:             genai.Ptr(float32(cfg.topP)),
			MaxOutputTokens:  int32(cfg.maxTokens), //nolint:gosec // bounded by WithMaxTokens
			ResponseMIMEType: "application/json",
		},
	}, nil
}

func (g *google) generate(ctx context.Context, instruction, content string) (reply, error) {
	cfg := *g.config
	cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(content), &cfg)
	if err != nil {
		return reply{}, err
	}

	r := reply{text: resp.Text()}
	if resp.UsageMetadata != nil {
		r.inputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		r.outputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return r, nil
}
