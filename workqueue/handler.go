/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/crisiseval/pipeline"
	"github.com/chainguard-dev/clog"
	"github.com/hibiken/asynq"
)

// Runner executes one evaluation.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Completion, error)
}

// Handler processes TypeEvaluate tasks.
type Handler struct {
	runner Runner
}

var _ asynq.Handler = (*Handler)(nil)

// NewHandler creates a handler around runner.
func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Register adds the handler to mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.Handle(TypeEvaluate, h)
}

// ProcessTask implements asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := clog.FromContext(ctx).With("task_type", t.Type())
	if id, ok := asynq.GetTaskID(ctx); ok {
		log = log.With("task_id", id)
	}
	if n, ok := asynq.GetRetryCount(ctx); ok && n > 0 {
		log = log.With("retry", n)
	}
	ctx = clog.WithLogger(ctx, log)

	req, err := decodeRequest(t.Payload())
	if err != nil {
		log.Warnf("Dropping malformed task: %v", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	completion, err := h.runner.Run(ctx, req)
	if completion != nil {
		if werr := writeResult(t, completion); werr != nil {
			log.Warnf("Failed to write task result: %v", werr)
		}
	}
	if err == nil {
		if completion != nil {
			log = log.With("run_id", completion.RunID)
		}
		log.Info("Task complete")
		return nil
	}

	if !Retryable(err) {
		log.Warnf("Evaluation failed with non-retriable error: %v", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	log.Errorf("Evaluation failed, leaving task for retry: %v", err)
	return err
}

// Retryable reports whether a pipeline error may succeed on another attempt.
func Retryable(err error) bool {
	var (
		missing *pipeline.InputMissingError
		stage   *pipeline.StageError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &stage):
		return false
	}
	return true
}

func writeResult(t *asynq.Task, c *pipeline.Completion) error {
	w := t.ResultWriter()
	if w == nil {
		return nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
