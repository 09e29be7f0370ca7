/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

// Status is the outcome of a run reported to the scheduler.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Completion is returned to the scheduler for every run.
type Completion struct {
	Bucket    string `json:"bucket"`
	InputKey  string `json:"input_key"`
	OutputKey string `json:"output_key,omitempty"`
	// OutputBucket is set when results go to a different bucket.
	OutputBucket string  `json:"output_bucket,omitempty"`
	Status       Status  `json:"status"`
	Degraded     bool    `json:"degraded"`
	Percentage   float64 `json:"percentage"`
	Band         string  `json:"band,omitempty"`
	RunID        string  `json:"run_id"`
}
