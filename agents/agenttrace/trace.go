/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.crisiseval.agenttrace"

// Call records a single judge invocation from request to response.
type Call struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Run          RunContext `json:"run"`
	Instruction  string     `json:"instruction"`
	Content      string     `json:"content"`
	Response     string     `json:"response"`
	Error        error      `json:"error,omitempty"`
	InputTokens  int64      `json:"input_tokens"`
	OutputTokens int64      `json:"output_tokens"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`

	tracer Tracer
	mu     sync.Mutex
	span   oteltrace.Span
}

// StartCall opens a span for a judge invocation using the tracer in ctx.
// The returned context carries the span so transport instrumentation nests under it.
func StartCall(ctx context.Context, model, instruction, content string) (context.Context, *Call) {
	rc := GetRunContext(ctx)

	attrs := append([]attribute.KeyValue{
		attribute.String("model", model),
		attribute.Int("prompt.instruction_bytes", len(instruction)),
		attribute.Int("prompt.content_bytes", len(content)),
	}, rc.SpanAttributes()...)

	tr := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "judge.invoke", oteltrace.WithAttributes(attrs...))

	return ctx, &Call{
		ID:          uuid.NewString(),
		Model:       model,
		Run:         rc,
		Instruction: instruction,
		Content:     content,
		StartTime:   time.Now(),
		tracer:      TracerFromContext(ctx),
		span:        span,
	}
}

// RecordTokenUsage records token usage as span attributes so consumption is
// visible in a trace without cross-referencing metrics.
func (c *Call) RecordTokenUsage(inputTokens, outputTokens int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.InputTokens, c.OutputTokens = inputTokens, outputTokens
	c.span.SetAttributes(
		attribute.Int64("tokens.input", inputTokens),
		attribute.Int64("tokens.output", outputTokens),
		attribute.Int64("tokens.total", inputTokens+outputTokens),
	)
}

// Complete ends the span and hands the call to the tracer.
func (c *Call) Complete(response string, err error) {
	c.mu.Lock()
	c.Response = response
	c.Error = err
	c.EndTime = time.Now()
	c.mu.Unlock()

	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	} else {
		c.span.SetAttributes(attribute.Int("response.bytes", len(response)))
		c.span.SetStatus(codes.Ok, "")
	}
	c.span.End()

	c.tracer.RecordCall(c)
}

// Duration returns the duration of the call
func (c *Call) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.EndTime.IsZero() {
		return time.Since(c.StartTime)
	}
	return c.EndTime.Sub(c.StartTime)
}

// String returns a structured representation of the call
func (c *Call) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Judge call %s ===\n", c.ID)
	fmt.Fprintf(&sb, "Model: %s\n", c.Model)
	if c.Run.RunID != "" {
		fmt.Fprintf(&sb, "Run: %s (%s/%s)\n", c.Run.RunID, c.Run.Bucket, c.Run.Key)
	}
	fmt.Fprintf(&sb, "Prompt: %d instruction bytes, %d content bytes\n", len(c.Instruction), len(c.Content))
	fmt.Fprintf(&sb, "Tokens: %d in, %d out\n", c.InputTokens, c.OutputTokens)

	switch {
	case c.Error != nil:
		fmt.Fprintf(&sb, "Error: %v\n", c.Error)
	default:
		resp := c.Response
		if len(resp) > 500 {
			resp = resp[:497] + "..."
		}
		fmt.Fprintf(&sb, "Response: %s\n", resp)
	}
	return sb.String()
}
