/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer creates a new default tracer that logs to clog
func NewDefaultTracer(ctx context.Context) Tracer {
	logger := clog.FromContext(ctx)

	return ByCode(func(call *Call) {
		log := logger.With(
			"call_id", call.ID,
			"run_id", call.Run.RunID,
			"key", call.Run.Key,
			"model", call.Model,
			"duration_ms", call.Duration().Milliseconds(),
			"input_tokens", call.InputTokens,
			"output_tokens", call.OutputTokens,
		)
		if call.Error != nil {
			log.Warn("Judge call failed", "error", call.Error)
			return
		}
		log.Debug("Judge call completed", "call", call.String())
	})
}
