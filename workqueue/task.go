/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workqueue

import (
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/crisiseval/pipeline"
	"chainguard.dev/crisiseval/storage"
	"github.com/hibiken/asynq"
)

// TypeEvaluate is the asynq task type for a transcript evaluation.
const TypeEvaluate = "transcript:evaluate"

// NewEvaluateTask creates a task that evaluates the transcript at loc.
func NewEvaluateTask(loc storage.Location, opts ...asynq.Option) (*asynq.Task, error) {
	if !loc.Valid() {
		return nil, errors.New("task requires bucket and key")
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return asynq.NewTask(TypeEvaluate, payload, opts...), nil
}

// NewNotificationTask creates a task from a raw storage change notification.
func NewNotificationTask(notification []byte, opts ...asynq.Option) (*asynq.Task, error) {
	if !json.Valid(notification) {
		return nil, errors.New("notification is not valid JSON")
	}
	return asynq.NewTask(TypeEvaluate, notification, opts...), nil
}

// decodeRequest accepts either {"bucket","key"} or a storage notification.
func decodeRequest(payload []byte) (pipeline.Request, error) {
	if !json.Valid(payload) {
		return pipeline.Request{}, errors.New("payload is not valid JSON")
	}
	var loc storage.Location
	if err := json.Unmarshal(payload, &loc); err == nil && loc.Valid() {
		return pipeline.Request{Location: &loc}, nil
	}
	return pipeline.Request{Notification: json.RawMessage(payload)}, nil
}
