/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"encoding/json"
	"testing"

	"chainguard.dev/crisiseval/agents/schema"
	"github.com/google/go-cmp/cmp"
)

type verdict struct {
	Score    int    `json:"score" jsonschema:"required,description=Selected score"`
	Label    string `json:"label" jsonschema:"required"`
	Evidence string `json:"evidence,omitempty"`
}

func TestReflect(t *testing.T) {
	s := schema.ReflectType[verdict]()
	if s == nil {
		t.Fatal("ReflectType(): got = nil, wanted schema")
	}

	if s.Type != "object" {
		t.Errorf("type: got = %q, wanted = %q", s.Type, "object")
	}
	if diff := cmp.Diff([]string{"score", "label"}, s.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}

	score, ok := s.Properties.Get("score")
	if !ok {
		t.Fatal("missing score property")
	}
	if score.Type != "integer" || score.Description != "Selected score" {
		t.Errorf("score: got = (%q, %q), wanted = (integer, Selected score)", score.Type, score.Description)
	}
	if s.Version != "" {
		t.Errorf("$schema: got = %q, wanted empty", s.Version)
	}
}

func TestReflectIsStable(t *testing.T) {
	first, err := json.Marshal(schema.ReflectType[verdict]())
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	for range 5 {
		next, err := json.Marshal(schema.ReflectType[verdict]())
		if err != nil {
			t.Fatalf("Marshal() = %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("schema output changed:\n%s\n%s", first, next)
		}
	}
}

func TestWithEnum(t *testing.T) {
	s := schema.ReflectType[verdict]()

	if err := schema.WithEnum(s, "score", 0, 1); err != nil {
		t.Fatalf("WithEnum() = %v", err)
	}
	score, _ := s.Properties.Get("score")
	if diff := cmp.Diff([]any{0, 1}, score.Enum); diff != "" {
		t.Errorf("enum (-want +got):\n%s", diff)
	}

	if err := schema.WithEnum(s, "missing", "x"); err == nil {
		t.Error("WithEnum(missing): got = nil error, wanted error")
	}
}
