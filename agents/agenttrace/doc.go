/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace traces judge invocations.

Every call opens an OpenTelemetry span named "judge.invoke" carrying the
model, prompt sizes and token usage. When the call completes it is handed
to the Tracer found in the context. Without one, calls are logged with clog.

The run being evaluated is attached to the context once and picked up by
every call made under it:

	ctx = agenttrace.WithRunContext(ctx, agenttrace.RunContext{
		RunID:  runID,
		Bucket: loc.Bucket,
		Key:    loc.Key,
	})

	ctx, call := agenttrace.StartCall(ctx, model, instruction, content)
	resp, err := send(ctx)
	call.Complete(resp, err)

Tests capture calls with ByCode:

	var calls []*agenttrace.Call
	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(func(c *agenttrace.Call) {
		calls = append(calls, c)
	}))
*/
package agenttrace
