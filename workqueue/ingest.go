/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workqueue

import (
	"context"
	"io"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/hibiken/asynq"
)

// maxNotificationBytes bounds the body accepted by NotificationHandler.
const maxNotificationBytes = 1 << 20

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NotificationHandler accepts storage change notifications over HTTP and
// enqueues one evaluation task per request.
func NotificationHandler(q Enqueuer, opts ...asynq.Option) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			http.Error(w, "reading body", http.StatusBadRequest)
			return
		}

		task, err := NewNotificationTask(body, opts...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		info, err := q.EnqueueContext(r.Context(), task)
		if err != nil {
			clog.FromContext(r.Context()).Errorf("Failed to enqueue notification: %v", err)
			http.Error(w, "enqueue failed", http.StatusServiceUnavailable)
			return
		}

		clog.FromContext(r.Context()).With("task_id", info.ID, "queue", info.Queue).Info("Enqueued evaluation")
		w.WriteHeader(http.StatusAccepted)
	})
}
