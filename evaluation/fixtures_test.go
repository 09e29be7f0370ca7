/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation_test

import (
	"encoding/json"
	"testing"

	"chainguard.dev/crisiseval/rubric"
	"chainguard.dev/crisiseval/transcript"
)

const (
	counselorLine = "00:00:01 counselor: Thank you for calling, I'm here to listen."
	callerLine    = "00:00:09 caller: I haven't been sleeping and I feel hopeless."
)

func testTranscript() *transcript.Transcript {
	return &transcript.Transcript{
		Summary: "Caller reports hopelessness and insomnia.",
		Utterances: []transcript.Utterance{{
			Speaker:   "counselor",
			Text:      "Thank you for calling, I'm here to listen.",
			BeginTime: "00:00:01",
			EndTime:   "00:00:05",
		}, {
			Speaker:   "caller",
			Text:      "I haven't been sleeping and I feel hopeless.",
			BeginTime: "00:00:09",
			EndTime:   "00:00:14",
		}},
	}
}

type verdict struct {
	Score       any    `json:"score"`
	Label       string `json:"label"`
	Observation string `json:"observation"`
	Evidence    string `json:"evidence"`
}

// allYes returns a judge response scoring every criterion Yes, with names
// in omit left out.
func allYes(t *testing.T, r *rubric.Rubric, omit ...string) map[string]any {
	t.Helper()
	skip := map[string]bool{}
	for _, n := range omit {
		skip[n] = true
	}
	out := map[string]any{}
	for _, name := range r.Names() {
		if skip[name] {
			continue
		}
		out[name] = verdict{Score: 1, Label: "Yes", Observation: "Clearly demonstrated.", Evidence: counselorLine}
	}
	return out
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	return string(b)
}
