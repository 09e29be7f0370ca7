/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transcript_test

import (
	"testing"

	"chainguard.dev/crisiseval/transcript"
	"github.com/google/go-cmp/cmp"
)

const doc = `{
  "summary": "Caller reached out after a difficult week.",
  "transcript": [
    {"speaker": "Counselor", "text": "Thanks for calling, I'm here to listen.", "beginTime": "00:00:01", "endTime": "00:00:04"},
    {"speaker": "Caller", "text": "I just don't know what to do anymore.", "beginTime": "00:00:05", "endTime": "00:00:09"}
  ]
}`

func TestDecode(t *testing.T) {
	tr, err := transcript.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}

	want := []string{
		"00:00:01 Counselor: Thanks for calling, I'm here to listen.",
		"00:00:05 Caller: I just don't know what to do anymore.",
	}
	if diff := cmp.Diff(want, tr.Lines()); diff != "" {
		t.Errorf("Lines() (-want +got):\n%s", diff)
	}
	if got, want := tr.Render(), want[0]+"\n\n"+want[1]; got != want {
		t.Errorf("Render(): got = %q, wanted = %q", got, want)
	}
	if tr.Summary != "Caller reached out after a difficult week." {
		t.Errorf("Summary: got = %q", tr.Summary)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, body := range []string{"", "not json", `{"transcript": "nope"}`} {
		if _, err := transcript.Decode([]byte(body)); err == nil {
			t.Errorf("Decode(%q): got = nil error, wanted error", body)
		}
	}
}

func TestReferences(t *testing.T) {
	tr, err := transcript.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}

	tests := []struct {
		name     string
		evidence string
		want     bool
	}{{
		name:     "verbatim line",
		evidence: "00:00:05 Caller: I just don't know what to do anymore.",
		want:     true,
	}, {
		name:     "quoted within text",
		evidence: `"00:00:01 Counselor: Thanks for calling"`,
		want:     true,
	}, {
		name:     "wrong speaker",
		evidence: "00:00:05 Counselor: I just don't know what to do anymore.",
		want:     false,
	}, {
		name:     "unknown timestamp",
		evidence: "00:10:00 Caller: something else",
		want:     false,
	}, {
		name:     "speaker prefix",
		evidence: "00:00:01 CounselorX: invented",
		want:     false,
	}, {
		name:     "speaker prefix with underscore",
		evidence: "00:00:01 Counselor_bot: invented",
		want:     false,
	}, {
		name:     "timestamp suffix",
		evidence: "100:00:01 Counselor: Thanks for calling",
		want:     false,
	}, {
		name:     "bare reference",
		evidence: "00:00:05 Caller",
		want:     true,
	}, {
		name:     "empty",
		evidence: "  ",
		want:     false,
	}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tr.References(tc.evidence); got != tc.want {
				t.Errorf("References(%q): got = %v, wanted = %v", tc.evidence, got, tc.want)
			}
		})
	}
}
