/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

// State is a step of a run.
type State int

const (
	Fetching State = iota
	Building
	Judging
	Validating
	Aggregating
	Persisting
	Done
	Failed
)

var stateNames = [...]string{
	Fetching:    "Fetching",
	Building:    "Building",
	Judging:     "Judging",
	Validating:  "Validating",
	Aggregating: "Aggregating",
	Persisting:  "Persisting",
	Done:        "Done",
	Failed:      "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
