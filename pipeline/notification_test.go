/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"errors"
	"testing"

	"chainguard.dev/crisiseval/storage"
)

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    storage.Location
		wantErr error
	}{{
		name: "s3 event",
		raw:  `{"Records":[{"eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"calls"},"object":{"key":"formatted_transcripts/formatted_call-42.json","size":812}}}]}`,
		want: storage.Location{Bucket: "calls", Key: "formatted_transcripts/formatted_call-42.json"},
	}, {
		name: "s3 key is decoded",
		raw:  `{"Records":[{"s3":{"bucket":{"name":"calls"},"object":{"key":"formatted_transcripts/formatted_call+from+Jan%2001%282%29.json"}}}]}`,
		want: storage.Location{Bucket: "calls", Key: "formatted_transcripts/formatted_call from Jan 01(2).json"},
	}, {
		name: "first record wins",
		raw:  `{"Records":[{"s3":{"bucket":{"name":"a"},"object":{"key":"one"}}},{"s3":{"bucket":{"name":"b"},"object":{"key":"two"}}}]}`,
		want: storage.Location{Bucket: "a", Key: "one"},
	}, {
		name: "gcs notification is not decoded",
		raw:  `{"kind":"storage#object","bucket":"calls","name":"formatted_transcripts/formatted_a+b%20c.json"}`,
		want: storage.Location{Bucket: "calls", Key: "formatted_transcripts/formatted_a+b%20c.json"},
	}, {
		name:    "unrecognized",
		raw:     `{"message":"hello"}`,
		wantErr: ErrUnrecognizedNotification,
	}, {
		name:    "s3 record without key",
		raw:     `{"Records":[{"s3":{"bucket":{"name":"calls"},"object":{}}}]}`,
		wantErr: ErrUnrecognizedNotification,
	}, {
		name: "bad escape",
		raw:  `{"Records":[{"s3":{"bucket":{"name":"calls"},"object":{"key":"bad%zzkey"}}}]}`,
	}, {
		name: "not json",
		raw:  `calls/key.json`,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseNotification([]byte(tc.raw))
			wantFail := tc.wantErr != nil || tc.want == (storage.Location{})
			if wantFail {
				if err == nil {
					t.Fatalf("ParseNotification(): got = %v, wanted error", got)
				}
				if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
					t.Errorf("ParseNotification(): got = %v, wanted %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNotification() = %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseNotification(): got = %+v, wanted = %+v", got, tc.want)
			}
		})
	}
}

func TestOutputKey(t *testing.T) {
	tests := []struct {
		mapping KeyMapping
		in      string
		want    string
	}{
		{DefaultKeyMapping, "formatted_transcripts/formatted_call-42.json", "analysis_results/analysis_call-42.json"},
		{DefaultKeyMapping, "2025/06/formatted_transcripts/formatted_x.json", "2025/06/analysis_results/analysis_x.json"},
		{DefaultKeyMapping, "formatted_transcripts/call.json", "analysis_results/call.json"},
		{DefaultKeyMapping, "formatted_call.json", "analysis_call.json"},
		{DefaultKeyMapping, "inbox/call.json", "inbox/analysis_results/analysis_call.json"},
		{DefaultKeyMapping, "call.json", "analysis_results/analysis_call.json"},
		// The filename only takes the prefix mapping.
		{DefaultKeyMapping, "x/formatted_transcripts", "x/analysis_transcripts"},
		{KeyMapping{OutputPrefix: "scored_"}, "dir/call.json", "dir/scored_call.json"},
	}
	for _, tc := range tests {
		if got := tc.mapping.OutputKey(tc.in); got != tc.want {
			t.Errorf("OutputKey(%q): got = %q, wanted = %q", tc.in, got, tc.want)
		}
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Fetching: "Fetching", Building: "Building", Judging: "Judging", Validating: "Validating",
		Aggregating: "Aggregating", Persisting: "Persisting", Done: "Done", Failed: "Failed", State(42): "Unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("String(): got = %q, wanted = %q", got, want)
		}
	}
}
