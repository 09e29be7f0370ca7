/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"errors"
	"fmt"

	"chainguard.dev/crisiseval/storage"
)

// ErrEmptyBody is the cause of a RetrievalError for a zero-length object.
var ErrEmptyBody = errors.New("transcript object is empty")

// InputMissingError means no transcript location could be resolved.
type InputMissingError struct {
	Reason string
}

func (e *InputMissingError) Error() string {
	return "input missing: " + e.Reason
}

// RetrievalError means the transcript could not be fetched or decoded.
type RetrievalError struct {
	Location storage.Location
	Cause    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Location, e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

// StageError is a non-retryable failure of a local stage.
type StageError struct {
	State State
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }

// JudgeInvocationError means the model call failed.
type JudgeInvocationError struct {
	Model string
	Cause error
}

func (e *JudgeInvocationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("judging: %v", e.Cause)
	}
	return fmt.Sprintf("judging with %s: %v", e.Model, e.Cause)
}

func (e *JudgeInvocationError) Unwrap() error { return e.Cause }

// PersistenceError means the result could not be written.
type PersistenceError struct {
	Location storage.Location
	Cause    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Location, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// FailedState reports the state a run failed in.
func FailedState(err error) State {
	var (
		rerr *RetrievalError
		serr *StageError
		jerr *JudgeInvocationError
		perr *PersistenceError
	)
	switch {
	case errors.As(err, &rerr):
		return Fetching
	case errors.As(err, &serr):
		return serr.State
	case errors.As(err, &jerr):
		return Judging
	case errors.As(err, &perr):
		return Persisting
	}
	return Failed
}
