/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"errors"
	"path"
	"strings"
)

var errInvalidKeyMapping = errors.New("key mapping needs an output directory or prefix")

// KeyMapping derives the output object key from the input key.
type KeyMapping struct {
	// InputDir is the directory segment replaced by OutputDir.
	InputDir  string
	OutputDir string
	// InputPrefix is the filename prefix replaced by OutputPrefix.
	InputPrefix  string
	OutputPrefix string
}

// DefaultKeyMapping maps formatted_transcripts/formatted_x.json to
// analysis_results/analysis_x.json.
var DefaultKeyMapping = KeyMapping{
	InputDir:     "formatted_transcripts",
	OutputDir:    "analysis_results",
	InputPrefix:  "formatted_",
	OutputPrefix: "analysis_",
}

// OutputKey maps inputKey to its output key. A key that matches neither the
// directory nor the prefix gets an OutputDir segment before its filename and
// OutputPrefix on the filename, so the output never overwrites the input.
func (m KeyMapping) OutputKey(inputKey string) string {
	segments := strings.Split(inputKey, "/")
	last := len(segments) - 1

	changed := false
	for i := range segments[:last] {
		if m.InputDir != "" && segments[i] == m.InputDir {
			segments[i] = m.OutputDir
			changed = true
		}
	}
	if m.InputPrefix != "" && strings.HasPrefix(segments[last], m.InputPrefix) {
		segments[last] = m.OutputPrefix + strings.TrimPrefix(segments[last], m.InputPrefix)
		changed = true
	}

	out := strings.Join(segments, "/")
	if changed && out != inputKey {
		return out
	}
	name := m.OutputPrefix + segments[last]
	return path.Join(append(segments[:last:last], m.OutputDir, name)...)
}

func (m KeyMapping) validate() error {
	if m.OutputDir == "" && m.OutputPrefix == "" {
		return errInvalidKeyMapping
	}
	return nil
}
