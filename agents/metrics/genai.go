/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI provides OpenTelemetry metrics for judge model calls.
// Instruments that fail to initialize degrade to no-ops.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	invocations      metric.Int64Counter
	latency          metric.Float64Histogram
	attrEnricher     AttributeEnricher
}

// NewGenAI creates a new GenAI metrics instance with the specified meter name.
// The meter name is shared by every judge backend; the model name is a
// dimension on each recorded value.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	invocations, err := meter.Int64Counter("genai.judge.invocations",
		metric.WithDescription("The number of judge invocations by outcome"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create invocation counter, metrics will be disabled", "error", err, "meter", meterName)
		invocations = noop.Int64Counter{}
	}

	latency, err := meter.Float64Histogram("genai.judge.duration",
		metric.WithDescription("Wall time of a single judge invocation"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create latency histogram, metrics will be disabled", "error", err, "meter", meterName)
		latency = noop.Float64Histogram{}
	}

	return &GenAI{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		invocations:      invocations,
		latency:          latency,
	}
}

// SetAttributeEnricher sets the attribute enricher for this metrics instance.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attributes(ctx context.Context, model string, extra ...attribute.KeyValue) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("model", model)}
	if m.attrEnricher != nil {
		attrs = m.attrEnricher(ctx, attrs)
	}
	return append(attrs, extra...)
}

// RecordTokens records prompt and completion token usage.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	set := metric.WithAttributes(m.attributes(ctx, model, attrs...)...)
	m.promptTokens.Add(ctx, promptTokens, set)
	m.completionTokens.Add(ctx, completionTokens, set)
}

// RecordInvocation records the outcome and duration of one judge call.
func (m *GenAI) RecordInvocation(ctx context.Context, model string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	set := metric.WithAttributes(m.attributes(ctx, model, attribute.String("outcome", outcome))...)
	m.invocations.Add(ctx, 1, set)
	m.latency.Record(ctx, elapsed.Seconds(), set)
}
