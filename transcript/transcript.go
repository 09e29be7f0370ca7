/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Utterance is a single turn of the conversation.
type Utterance struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	BeginTime string `json:"beginTime"`
	EndTime   string `json:"endTime"`
}

// Line renders the utterance as "<beginTime> <speaker>: <text>".
func (u Utterance) Line() string {
	return fmt.Sprintf("%s %s: %s", u.BeginTime, u.Speaker, u.Text)
}

// reference is the timestamp/speaker pair that identifies the utterance in evidence.
func (u Utterance) reference() string {
	return strings.TrimSpace(u.BeginTime + " " + u.Speaker)
}

// Transcript is a formatted call transcript.
type Transcript struct {
	Summary    string      `json:"summary"`
	Utterances []Utterance `json:"transcript"`
}

// Decode parses a transcript document.
func Decode(data []byte) (*Transcript, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var t Transcript
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return &t, nil
}

// Lines renders every utterance in order.
func (t *Transcript) Lines() []string {
	lines := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		lines = append(lines, u.Line())
	}
	return lines
}

// Render joins the rendered lines with blank-line separators.
func (t *Transcript) Render() string {
	return strings.Join(t.Lines(), "\n\n")
}

// References reports whether evidence cites a timestamp/speaker pair
// that appears in the transcript.
func (t *Transcript) References(evidence string) bool {
	evidence = strings.TrimSpace(evidence)
	if evidence == "" {
		return false
	}
	for _, u := range t.Utterances {
		ref := u.reference()
		if ref == "" {
			continue
		}
		if cites(evidence, ref) {
			return true
		}
	}
	return false
}

// cites reports whether ref occurs in evidence as a whole reference: not
// preceded by a letter or digit, and followed by ':' or the end of evidence.
func cites(evidence, ref string) bool {
	for off := 0; ; {
		i := strings.Index(evidence[off:], ref)
		if i == -1 {
			return false
		}
		start, end := off+i, off+i+len(ref)
		before := start == 0 || !isWordByte(evidence[start-1])
		after := end == len(evidence) || evidence[end] == ':'
		if before && after {
			return true
		}
		off = start + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
