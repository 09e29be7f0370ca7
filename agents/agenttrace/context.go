/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// RunContext identifies the evaluation run a judge call belongs to.
type RunContext struct {
	RunID         string `json:"run_id,omitempty"`
	Bucket        string `json:"bucket,omitempty"`
	Key           string `json:"key,omitempty"`
	RubricVersion string `json:"rubric_version,omitempty"`
}

// SpanAttributes returns every field as span attributes.
// Spans tolerate high cardinality so the run ID and key are included.
func (r RunContext) SpanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if r.RunID != "" {
		attrs = append(attrs, attribute.String("run_id", r.RunID))
	}
	if r.Bucket != "" {
		attrs = append(attrs, attribute.String("bucket", r.Bucket))
	}
	if r.Key != "" {
		attrs = append(attrs, attribute.String("key", r.Key))
	}
	if r.RubricVersion != "" {
		attrs = append(attrs, attribute.String("rubric_version", r.RubricVersion))
	}
	return attrs
}

// EnrichAttributes adds run context to metric attributes using only BOUNDED
// labels. run_id and key are left out because every transcript would create
// a new time series.
func (r RunContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)
	if r.Bucket != "" {
		attrs = append(attrs, attribute.String("bucket", r.Bucket))
	}
	if r.RubricVersion != "" {
		attrs = append(attrs, attribute.String("rubric_version", r.RubricVersion))
	}
	return attrs
}

// Enricher adapts EnrichAttributes to a metrics.AttributeEnricher, reading
// the run context from ctx at record time.
func Enricher(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	return GetRunContext(ctx).EnrichAttributes(baseAttrs)
}

type contextKey struct{}

// WithRunContext adds run context to the Go context
func WithRunContext(ctx context.Context, rc RunContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// GetRunContext retrieves run context from the Go context
func GetRunContext(ctx context.Context) RunContext {
	if rc, ok := ctx.Value(contextKey{}).(RunContext); ok {
		return rc
	}
	return RunContext{}
}
