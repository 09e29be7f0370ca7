/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"chainguard.dev/crisiseval/agents/result"
)

// NotApplicable is the evidence value used when no transcript line applies.
const NotApplicable = "N/A"

// MetadataKey holds run-level scores in the persisted document.
const MetadataKey = "_evaluation"

// CriterionResult is the judgment for one criterion.
type CriterionResult struct {
	Criterion   string `json:"-"`
	Score       int    `json:"score"`
	Label       string `json:"label"`
	Observation string `json:"observation"`
	Evidence    string `json:"evidence"`
	// Unscored is set when the judge's value was replaced by the default.
	Unscored bool `json:"unscored,omitempty"`
}

// CategoryResult is the judgment for one rubric category.
type CategoryResult struct {
	Name     string            `json:"name"`
	Criteria []CriterionResult `json:"-"`
	Score    int               `json:"score"`
	MaxScore int               `json:"max_score"`
}

// EvaluationResult is the scored output of a run.
type EvaluationResult struct {
	RubricVersion string
	Categories    []CategoryResult
	Score         int
	MaxScore      int
	Percentage    float64
	Band          string
}

// Unscored counts criteria whose value was substituted.
func (e *EvaluationResult) Unscored() int {
	n := 0
	for _, cat := range e.Categories {
		for _, c := range cat.Criteria {
			if c.Unscored {
				n++
			}
		}
	}
	return n
}

type metadata struct {
	RubricVersion string           `json:"rubric_version"`
	Categories    []CategoryResult `json:"categories"`
	Score         int              `json:"score"`
	MaxScore      int              `json:"max_score"`
	Percentage    float64          `json:"percentage"`
	Band          string           `json:"band"`
}

// MarshalJSON renders the persisted document: one key per criterion in
// rubric order, followed by the run-level metadata.
func (e *EvaluationResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, v any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	for _, cat := range e.Categories {
		for _, c := range cat.Criteria {
			if err := write(c.Criterion, c); err != nil {
				return nil, err
			}
		}
	}
	if err := write(MetadataKey, metadata{
		RubricVersion: e.RubricVersion,
		Categories:    e.Categories,
		Score:         e.Score,
		MaxScore:      e.MaxScore,
		Percentage:    e.Percentage,
		Band:          e.Band,
	}); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Outcome is the result of validating a judge response. It is either
// *Scored or *Degraded.
type Outcome interface {
	outcome()
}

// Scored holds one result for every rubric criterion.
type Scored struct {
	Criteria map[string]CriterionResult
	// Ignored lists response keys the rubric does not define, sorted.
	Ignored []string
	// Method records how the JSON object was recovered.
	Method result.Method
}

// Degraded preserves a response that held no usable JSON object.
type Degraded struct {
	RawAnalysis string `json:"raw_analysis"`
	Summary     string `json:"summary"`
	Reason      string `json:"-"`
}

func (*Scored) outcome()   {}
func (*Degraded) outcome() {}
