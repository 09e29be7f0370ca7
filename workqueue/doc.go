/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workqueue connects the evaluation pipeline to an asynq queue.
//
// Producers enqueue TypeEvaluate tasks built with NewEvaluateTask or
// NewNotificationTask. The Handler runs one pipeline per task and records
// the completion as the task result. Failures that cannot succeed on retry
// are returned wrapped in asynq.SkipRetry. Everything else is returned as
// is so the queue applies its retry policy.
package workqueue
