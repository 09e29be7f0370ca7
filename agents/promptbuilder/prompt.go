/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// stringLiteral is a private type alias that only accepts literal strings
type stringLiteral string

// Prompt represents a template with bindable placeholders
type Prompt struct {
	segments []segment
	bindings map[string]binding
}

// NewPrompt creates a new prompt from a template literal and parses bindings
func NewPrompt(template stringLiteral) (*Prompt, error) {
	segments, err := tokenize(string(template))
	if err != nil {
		return nil, err
	}

	bindings := make(map[string]binding)
	for _, s := range segments {
		if s.name != "" {
			bindings[s.name] = &unboundBinding{name: s.name}
		}
	}

	return &Prompt{
		segments: segments,
		bindings: bindings,
	}, nil
}

// Placeholders returns the sorted names of all placeholders in the template.
func (p *Prompt) Placeholders() []string {
	return slices.Sorted(maps.Keys(p.bindings))
}

// Unbound returns the sorted names of placeholders that have no value yet.
func (p *Prompt) Unbound() []string {
	var names []string
	for _, name := range p.Placeholders() {
		if _, ok := p.bindings[name].(*unboundBinding); ok {
			names = append(names, name)
		}
	}
	return names
}

// BindStringLiteral binds a literal string value to a placeholder
// The value comes from the developer, not from user input
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.bind(name, &literalBinding{val: string(value)})
}

// BindJSON binds structured data to a placeholder by marshaling it as indented JSON
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	return p.bind(name, &jsonBinding{data: data})
}

// BindYAML binds structured data to a placeholder by marshaling it as YAML
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	return p.bind(name, &yamlBinding{data: data})
}

// bind returns a copy of the prompt with name bound to b.
func (p *Prompt) bind(name string, b binding) (*Prompt, error) {
	if err := existsAndUnbound(p.bindings, name); err != nil {
		return nil, err
	}
	next := &Prompt{
		segments: p.segments,
		bindings: maps.Clone(p.bindings),
	}
	next.bindings[name] = b
	return next, nil
}

// Build constructs the final prompt, returning an error if any bindings are unbound
func (p *Prompt) Build() (string, error) {
	// Resolve each binding once even if it appears several times.
	values := make(map[string]string, len(p.bindings))
	for _, name := range p.Placeholders() {
		val, err := p.bindings[name].value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}

	var sb strings.Builder
	for _, s := range p.segments {
		if s.name == "" {
			sb.WriteString(s.text)
			continue
		}
		val, ok := values[s.name]
		if !ok {
			return "", fmt.Errorf("internal error: binding %q not found in values map", s.name)
		}
		sb.WriteString(val)
	}
	return sb.String(), nil
}
