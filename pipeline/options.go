/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"errors"

	"chainguard.dev/crisiseval/storage"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithOutputBucket writes results to bucket instead of the input's bucket.
func WithOutputBucket(bucket string) Option {
	return func(o *Orchestrator) error {
		o.outputBucket = bucket
		return nil
	}
}

// WithKeyMapping replaces DefaultKeyMapping.
func WithKeyMapping(m KeyMapping) Option {
	return func(o *Orchestrator) error {
		if err := m.validate(); err != nil {
			return err
		}
		o.keys = m
		return nil
	}
}

// WithDefaultInput is used when a request carries neither a location nor a
// notification.
func WithDefaultInput(loc storage.Location) Option {
	return func(o *Orchestrator) error {
		if !loc.Valid() {
			return errors.New("default input requires bucket and key")
		}
		o.defaultInput = &loc
		return nil
	}
}

// WithObserver is called on every state a run enters, including Failed.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) error {
		o.observer = fn
		return nil
	}
}

// WithModelName labels judge failures when the judge does not report its
// model.
func WithModelName(model string) Option {
	return func(o *Orchestrator) error {
		o.model = model
		return nil
	}
}
