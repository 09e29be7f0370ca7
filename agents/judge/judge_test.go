/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const verdict = `{"Tone":{"score":1,"evidence":"00:01 counselor: hi","observation":"warm"}}`

// fakeProvider serves a single canned response and captures the request.
type fakeProvider struct {
	status   int
	body     string
	requests atomic.Int32
	lastPath atomic.Value
	lastBody atomic.Value
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.lastPath.Store(r.URL.Path)
	b, _ := io.ReadAll(r.Body)
	f.lastBody.Store(b)

	w.Header().Set("Content-Type", "application/json")
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeProvider) requestJSON(t *testing.T) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(f.lastBody.Load().([]byte), &got); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	return got
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	return string(b)
}

func claudeBody(t *testing.T, text string) string {
	return mustJSON(t, map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 40},
	})
}

func openAIBody(t *testing.T, text string) string {
	return mustJSON(t, map[string]any{
		"id":      "cmpl_1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-test",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": text},
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
	})
}

func geminiBody(t *testing.T, text string) string {
	return mustJSON(t, map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 120, "candidatesTokenCount": 40},
	})
}

func TestInvoke(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		body     func(*testing.T, string) string
		wantPath string
		check    func(*testing.T, map[string]any)
	}{{
		name:     "claude",
		model:    "claude-test",
		body:     claudeBody,
		wantPath: "/v1/messages",
		check: func(t *testing.T, req map[string]any) {
			if got := req["temperature"]; got != DefaultTemperature {
				t.Errorf("temperature: got = %v, wanted = %v", got, DefaultTemperature)
			}
			if got := req["top_p"]; got != DefaultTopP {
				t.Errorf("top_p: got = %v, wanted = %v", got, DefaultTopP)
			}
			system := mustJSON(t, req["system"])
			if !strings.Contains(system, "score the call") {
				t.Errorf("system: got = %s, wanted instruction", system)
			}
		},
	}, {
		name:     "openai",
		model:    "gpt-test",
		body:     openAIBody,
		wantPath: "/chat/completions",
		check: func(t *testing.T, req map[string]any) {
			msgs, ok := req["messages"].([]any)
			if !ok || len(msgs) != 2 {
				t.Fatalf("messages: got = %v, wanted 2 messages", req["messages"])
			}
			if role := msgs[0].(map[string]any)["role"]; role != "system" {
				t.Errorf("first role: got = %v, wanted = system", role)
			}
			if got := req["temperature"]; got != DefaultTemperature {
				t.Errorf("temperature: got = %v, wanted = %v", got, DefaultTemperature)
			}
		},
	}, {
		name:     "openai reasoning model",
		model:    "o3-mini",
		body:     openAIBody,
		wantPath: "/chat/completions",
		check: func(t *testing.T, req map[string]any) {
			for _, key := range []string{"temperature", "top_p"} {
				if got, ok := req[key]; ok {
					t.Errorf("%s: got = %v, wanted unset", key, got)
				}
			}
			if got := req["model"]; got != "o3-mini" {
				t.Errorf("model: got = %v, wanted = o3-mini", got)
			}
		},
	}, {
		name:     "gemini",
		model:    "gemini-test",
		body:     geminiBody,
		wantPath: "/v1beta/models/gemini-test:generateContent",
		check: func(t *testing.T, req map[string]any) {
			if _, ok := req["systemInstruction"]; !ok {
				t.Errorf("systemInstruction missing from %v", req)
			}
		},
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeProvider{body: tc.body(t, verdict)}
			srv := httptest.NewServer(fake)
			t.Cleanup(srv.Close)

			j, err := New(context.Background(), tc.model,
				WithAPIKey("test-key"),
				WithBaseURL(srv.URL+"/"),
				WithHTTPClient(srv.Client()),
			)
			if err != nil {
				t.Fatalf("New() = %v", err)
			}

			got, err := j.Invoke(context.Background(), "score the call", "00:01 counselor: hi")
			if err != nil {
				t.Fatalf("Invoke() = %v", err)
			}
			if got != verdict {
				t.Errorf("Invoke(): got = %q, wanted = %q", got, verdict)
			}
			if path := fake.lastPath.Load(); path != tc.wantPath {
				t.Errorf("path: got = %v, wanted = %s", path, tc.wantPath)
			}
			tc.check(t, fake.requestJSON(t))
		})
	}
}

func TestInvokeEmptyResponse(t *testing.T) {
	fake := &fakeProvider{body: claudeBody(t, "  \n")}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	j, err := New(context.Background(), "claude-test",
		WithAPIKey("test-key"), WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	_, err = j.Invoke(context.Background(), "score", "content")
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Fatalf("Invoke(): got = %v, wanted *InvocationError", err)
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Invoke(): got = %v, wanted ErrEmptyResponse", err)
	}
	if ie.Model != "claude-test" {
		t.Errorf("Model: got = %q, wanted = claude-test", ie.Model)
	}
}

func TestInvokeTransportErrorIsNotRetried(t *testing.T) {
	for _, model := range []string{"claude-test", "gpt-test"} {
		t.Run(model, func(t *testing.T) {
			fake := &fakeProvider{
				status: http.StatusServiceUnavailable,
				body:   `{"error":{"type":"overloaded_error","message":"try later"}}`,
			}
			srv := httptest.NewServer(fake)
			t.Cleanup(srv.Close)

			j, err := New(context.Background(), model,
				WithAPIKey("test-key"), WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
			if err != nil {
				t.Fatalf("New() = %v", err)
			}

			_, err = j.Invoke(context.Background(), "score", "content")
			var ie *InvocationError
			if !errors.As(err, &ie) {
				t.Fatalf("Invoke(): got = %v, wanted *InvocationError", err)
			}
			if got := fake.requests.Load(); got != 1 {
				t.Errorf("requests: got = %d, wanted = 1", got)
			}
		})
	}
}

func TestInvokeCanceled(t *testing.T) {
	fake := &fakeProvider{body: claudeBody(t, verdict)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	j, err := New(context.Background(), "claude-test",
		WithAPIKey("test-key"), WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = j.Invoke(ctx, "score", "content")
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Errorf("Invoke(): got = %v, wanted *InvocationError", err)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		model string
		opts  []Option
	}{
		{name: "unknown model", model: "llama-3", opts: []Option{WithAPIKey("k")}},
		{name: "claude without credentials", model: "claude-test"},
		{name: "openai without key", model: "gpt-test"},
		{name: "gemini without credentials", model: "gemini-test"},
		{name: "temperature too high", model: "gpt-test", opts: []Option{WithAPIKey("k"), WithTemperature(1.5)}},
		{name: "top_p zero", model: "gpt-test", opts: []Option{WithAPIKey("k"), WithTopP(0)}},
		{name: "max tokens", model: "gpt-test", opts: []Option{WithAPIKey("k"), WithMaxTokens(0)}},
		{name: "partial vertex", model: "claude-test", opts: []Option{WithVertex("proj", "")}},
		{name: "empty key", model: "gpt-test", opts: []Option{WithAPIKey("")}},
		{name: "nil client", model: "gpt-test", opts: []Option{WithAPIKey("k"), WithHTTPClient(nil)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(context.Background(), tc.model, tc.opts...); err == nil {
				t.Error("New(): got = nil error, wanted error")
			}
		})
	}
}

func TestProvider(t *testing.T) {
	got := map[string]providerKind{}
	for _, m := range []string{"claude-opus-4", "Claude-3", "gemini-2.5-pro", "gpt-4o", "o3-mini", "o1", "oops", "mistral"} {
		got[m] = provider(m)
	}
	want := map[string]providerKind{
		"claude-opus-4":  providerAnthropic,
		"Claude-3":       providerAnthropic,
		"gemini-2.5-pro": providerGoogle,
		"gpt-4o":         providerOpenAI,
		"o3-mini":        providerOpenAI,
		"o1":             providerOpenAI,
		"oops":           providerUnknown,
		"mistral":        providerUnknown,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("provider() (-want +got):\n%s", diff)
	}
}
