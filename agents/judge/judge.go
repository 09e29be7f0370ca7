/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/crisiseval/agents/agenttrace"
	"chainguard.dev/crisiseval/agents/metrics"
	"github.com/chainguard-dev/clog"
)

// ErrEmptyResponse is the cause of an InvocationError when the model
// answered without any text.
var ErrEmptyResponse = errors.New("judge returned an empty response")

// Interface sends one instruction block and one content block to a model
// and returns its raw text. Each call is an isolated request with no
// conversation history. Implementations never retry.
type Interface interface {
	Invoke(ctx context.Context, instruction, content string) (string, error)
}

// InvocationError wraps a failed model call.
type InvocationError struct {
	Model string
	Cause error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("judge %s: %v", e.Model, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// reply is the normalized response of a backend.
type reply struct {
	text         string
	inputTokens  int64
	outputTokens int64
}

// backend performs exactly one request against a model provider.
type backend interface {
	generate(ctx context.Context, instruction, content string) (reply, error)
}

// invoker layers tracing, metrics and error typing over a backend.
type invoker struct {
	model   string
	backend backend
	metrics *metrics.GenAI
}

var _ Interface = (*invoker)(nil)

// Invoke implements Interface.
func (j *invoker) Invoke(ctx context.Context, instruction, content string) (response string, err error) {
	ctx, call := agenttrace.StartCall(ctx, j.model, instruction, content)
	start := time.Now()
	defer func() {
		j.metrics.RecordInvocation(ctx, j.model, time.Since(start), err)
		call.Complete(response, err)
	}()

	clog.FromContext(ctx).With(
		"model", j.model,
		"instruction_length", len(instruction),
		"content_length", len(content),
	).Info("Invoking judge")

	r, err := j.backend.generate(ctx, instruction, content)
	if err != nil {
		return "", &InvocationError{Model: j.model, Cause: err}
	}
	if r.inputTokens > 0 || r.outputTokens > 0 {
		j.metrics.RecordTokens(ctx, j.model, r.inputTokens, r.outputTokens)
		call.RecordTokenUsage(r.inputTokens, r.outputTokens)
	}
	if strings.TrimSpace(r.text) == "" {
		return "", &InvocationError{Model: j.model, Cause: ErrEmptyResponse}
	}
	return r.text, nil
}

// New returns a judge for model, choosing the provider from the model name:
// claude-* uses Anthropic, gemini-* uses Google GenAI and gpt-* or o<digit>*
// uses OpenAI.
func New(ctx context.Context, model string, opts ...Option) (Interface, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	var (
		b   backend
		err error
	)
	switch provider(model) {
	case providerAnthropic:
		b, err = newClaude(ctx, model, cfg)
	case providerGoogle:
		b, err = newGoogle(ctx, model, cfg)
	case providerOpenAI:
		b, err = newOpenAI(model, cfg)
	default:
		return nil, fmt.Errorf("unsupported model: %q (expected claude-*, gemini-*, gpt-* or o*)", model)
	}
	if err != nil {
		return nil, err
	}

	genai := metrics.NewGenAI("chainguard.crisiseval.judge")
	genai.SetAttributeEnricher(cfg.enricher)
	return &invoker{
		model:   model,
		backend: b,
		metrics: genai,
	}, nil
}

type providerKind int

const (
	providerUnknown providerKind = iota
	providerAnthropic
	providerGoogle
	providerOpenAI
)

func provider(model string) providerKind {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude-"):
		return providerAnthropic
	case strings.HasPrefix(m, "gemini-"):
		return providerGoogle
	case strings.HasPrefix(m, "gpt-"):
		return providerOpenAI
	case reasoningModel(m):
		return providerOpenAI
	}
	return providerUnknown
}

// reasoningModel reports whether model belongs to the OpenAI o-series, which
// only accepts default sampling parameters.
func reasoningModel(model string) bool {
	m := strings.ToLower(model)
	return len(m) > 1 && m[0] == 'o' && m[1] >= '0' && m[1] <= '9'
}
