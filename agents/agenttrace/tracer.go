/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Tracer receives completed judge calls.
type Tracer interface {
	RecordCall(call *Call)
}

type tracerKey struct{}

// WithTracer returns a new context with the given tracer
func WithTracer(ctx context.Context, tracer Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, tracer)
}

// TracerFromContext returns the tracer from the context, or the default logging tracer
func TracerFromContext(ctx context.Context) Tracer {
	if tracer, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return tracer
	}
	return NewDefaultTracer(ctx)
}

// CallCallback is a function that receives completed calls
type CallCallback func(*Call)

type byCodeTracer struct {
	callbacks []CallCallback
}

// ByCode creates a Tracer that invokes the given callbacks for every completed call
func ByCode(callbacks ...CallCallback) Tracer {
	return &byCodeTracer{callbacks: callbacks}
}

// RecordCall invokes all callbacks with the completed call in parallel
func (t *byCodeTracer) RecordCall(call *Call) {
	g := new(errgroup.Group)
	for _, callback := range t.callbacks {
		if callback != nil {
			g.Go(func() error {
				callback(call)
				return nil
			})
		}
	}
	// Callbacks never return errors.
	_ = g.Wait()
}
