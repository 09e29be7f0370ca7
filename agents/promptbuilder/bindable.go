/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

// Bindable represents a type that can bind values to a Prompt.
// Request types implement it so a shared template can be bound to the
// data of a single evaluation.
type Bindable interface {
	// Bind takes a prompt and returns a new prompt with bound values.
	Bind(prompt *Prompt) (*Prompt, error)
}

// BuildFrom binds b into the template and builds the result.
func BuildFrom(template *Prompt, b Bindable) (string, error) {
	bound, err := b.Bind(template)
	if err != nil {
		return "", err
	}
	return bound.Build()
}
