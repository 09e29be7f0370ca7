/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workqueue

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/crisiseval/pipeline"
	"chainguard.dev/crisiseval/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	err          error
	noCompletion bool
	reqs         []pipeline.Request
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Completion, error) {
	f.reqs = append(f.reqs, req)
	if f.noCompletion {
		return nil, f.err
	}
	status := pipeline.StatusSuccess
	if f.err != nil {
		status = pipeline.StatusFailure
	}
	return &pipeline.Completion{Status: status, RunID: "run-1"}, f.err
}

func TestNewEvaluateTask(t *testing.T) {
	loc := storage.Location{Bucket: "calls", Key: "formatted_transcripts/formatted_1.json"}
	task, err := NewEvaluateTask(loc, asynq.MaxRetry(3))
	require.NoError(t, err)
	if task.Type() != TypeEvaluate {
		t.Errorf("Type(): got = %q, wanted = %q", task.Type(), TypeEvaluate)
	}

	req, err := decodeRequest(task.Payload())
	require.NoError(t, err)
	if req.Location == nil || *req.Location != loc {
		t.Errorf("decodeRequest(): got = %+v, wanted location %v", req, loc)
	}

	if _, err := NewEvaluateTask(storage.Location{Key: "k"}); err == nil {
		t.Error("NewEvaluateTask(no bucket): got = nil error, wanted error")
	}
	if _, err := NewNotificationTask([]byte("not json")); err == nil {
		t.Error("NewNotificationTask(invalid): got = nil error, wanted error")
	}
}

func TestDecodeRequestNotification(t *testing.T) {
	for _, payload := range []string{
		`{"Records":[{"s3":{"bucket":{"name":"calls"},"object":{"key":"a.json"}}}]}`,
		`{"bucket":"calls","name":"a.json"}`,
		`{}`,
	} {
		req, err := decodeRequest([]byte(payload))
		require.NoError(t, err)
		if req.Location != nil {
			t.Errorf("decodeRequest(%s): got location %v, wanted notification", payload, req.Location)
		}
		if string(req.Notification) != payload {
			t.Errorf("Notification: got = %s, wanted = %s", req.Notification, payload)
		}
	}
}

func TestProcessTask(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		err       error
		wantErr   bool
		wantSkip  bool
		wantCalls int
	}{{
		name:      "success",
		payload:   `{"bucket":"calls","key":"k.json"}`,
		wantCalls: 1,
	}, {
		name:     "malformed payload",
		payload:  `{"bucket":`,
		wantErr:  true,
		wantSkip: true,
	}, {
		name:      "input missing",
		payload:   `{}`,
		err:       &pipeline.InputMissingError{Reason: "nothing"},
		wantErr:   true,
		wantSkip:  true,
		wantCalls: 1,
	}, {
		name:      "empty transcript",
		payload:   `{"bucket":"calls","key":"k.json"}`,
		err:       &pipeline.StageError{State: pipeline.Building, Cause: errors.New("no utterances")},
		wantErr:   true,
		wantSkip:  true,
		wantCalls: 1,
	}, {
		name:      "retrieval",
		payload:   `{"bucket":"calls","key":"k.json"}`,
		err:       &pipeline.RetrievalError{Cause: errors.New("timeout")},
		wantErr:   true,
		wantCalls: 1,
	}, {
		name:      "judge",
		payload:   `{"bucket":"calls","key":"k.json"}`,
		err:       &pipeline.JudgeInvocationError{Model: "m", Cause: errors.New("overloaded")},
		wantErr:   true,
		wantCalls: 1,
	}, {
		name:      "persistence",
		payload:   `{"bucket":"calls","key":"k.json"}`,
		err:       &pipeline.PersistenceError{Cause: errors.New("denied")},
		wantErr:   true,
		wantCalls: 1,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{err: tc.err}
			h := NewHandler(runner)

			err := h.ProcessTask(context.Background(), asynq.NewTask(TypeEvaluate, []byte(tc.payload)))
			if (err != nil) != tc.wantErr {
				t.Fatalf("ProcessTask(): got = %v, wanted error = %v", err, tc.wantErr)
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tc.wantSkip {
				t.Errorf("SkipRetry: got = %v, wanted = %v (%v)", got, tc.wantSkip, err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Errorf("ProcessTask(): got = %v, wanted to wrap %v", err, tc.err)
			}
			if diff := cmp.Diff(tc.wantCalls, len(runner.reqs)); diff != "" {
				t.Errorf("runs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessTaskWithoutCompletion(t *testing.T) {
	runner := &fakeRunner{noCompletion: true}
	h := NewHandler(runner)

	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeEvaluate, []byte(`{"bucket":"calls","key":"k.json"}`)))
	require.NoError(t, err)
	if len(runner.reqs) != 1 {
		t.Errorf("runs: got = %d, wanted = 1", len(runner.reqs))
	}
}
