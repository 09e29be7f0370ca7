/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judgetest provides fakes of judge.Interface for tests.
package judgetest

import (
	"context"
	"sync"

	"chainguard.dev/crisiseval/agents/judge"
)

// Func adapts a function to judge.Interface.
type Func func(ctx context.Context, instruction, content string) (string, error)

var _ judge.Interface = Func(nil)

// Invoke implements judge.Interface.
func (f Func) Invoke(ctx context.Context, instruction, content string) (string, error) {
	return f(ctx, instruction, content)
}

// Call is one recorded invocation.
type Call struct {
	Instruction string
	Content     string
}

// Recorder returns canned responses and records every call.
type Recorder struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []Call
}

var _ judge.Interface = (*Recorder)(nil)

// Invoke implements judge.Interface.
func (r *Recorder) Invoke(_ context.Context, instruction, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Instruction: instruction, Content: content})
	if r.Err != nil {
		return "", r.Err
	}
	return r.Response, nil
}

// Calls returns a copy of the recorded invocations.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
