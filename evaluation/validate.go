/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"chainguard.dev/crisiseval/agents/result"
	"chainguard.dev/crisiseval/rubric"
	"chainguard.dev/crisiseval/transcript"
)

// UnscoredObservation prefixes the observation of a substituted criterion.
const UnscoredObservation = "Missing or invalid judge output"

const evidenceNote = "Evidence discarded: it does not reference a line of the transcript."

// Validate parses a judge response into one result per rubric criterion.
// It never fails: a response without a JSON object yields *Degraded and
// any criterion that is missing or malformed is substituted.
func Validate(raw string, r *rubric.Rubric, t *transcript.Transcript) Outcome {
	obj, err := result.ExtractObject(raw)
	if err != nil {
		var summary string
		if t != nil {
			summary = t.Summary
		}
		return &Degraded{RawAnalysis: raw, Summary: summary, Reason: err.Error()}
	}

	criteria := r.Criteria()
	out := &Scored{
		Criteria: make(map[string]CriterionResult, len(criteria)),
		Method:   obj.Method,
	}
	for _, c := range criteria {
		value, ok := obj.Fields[c.Name]
		if !ok {
			out.Criteria[c.Name] = Unscored(c, "criterion missing from response")
			continue
		}
		cr, err := validateCriterion(c, value, t)
		if err != nil {
			out.Criteria[c.Name] = Unscored(c, err.Error())
			continue
		}
		out.Criteria[c.Name] = cr
	}

	for key := range obj.Fields {
		if _, ok := r.Lookup(key); !ok {
			out.Ignored = append(out.Ignored, key)
		}
	}
	slices.Sort(out.Ignored)
	return out
}

// Unscored returns the substitute result for a criterion the judge did not
// answer usably.
func Unscored(c rubric.Criterion, reason string) CriterionResult {
	low := c.Lowest()
	observation := UnscoredObservation
	if reason != "" {
		observation += ": " + reason
	}
	return CriterionResult{
		Criterion:   c.Name,
		Score:       low.Score,
		Label:       low.Label,
		Observation: observation,
		Evidence:    NotApplicable,
		Unscored:    true,
	}
}

func validateCriterion(c rubric.Criterion, value json.RawMessage, t *transcript.Transcript) (CriterionResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
		return CriterionResult{}, errors.New("value is not an object")
	}

	score, err := parseScore(fields["score"])
	if err != nil {
		return CriterionResult{}, err
	}
	want, ok := c.LabelFor(score)
	if !ok {
		return CriterionResult{}, fmt.Errorf("score %d is not in the scale", score)
	}

	label, ok := stringField(fields["label"])
	if !ok {
		return CriterionResult{}, errors.New("label is not a string")
	}
	if !strings.EqualFold(strings.TrimSpace(label), want) {
		return CriterionResult{}, fmt.Errorf("label %q does not match score %d (%q)", label, score, want)
	}

	evidence, ok := stringField(fields["evidence"])
	evidence = strings.TrimSpace(evidence)
	if !ok || evidence == "" {
		return CriterionResult{}, errors.New("evidence is missing")
	}

	observation, _ := stringField(fields["observation"])
	observation = strings.TrimSpace(observation)

	if strings.EqualFold(evidence, NotApplicable) {
		evidence = NotApplicable
	} else if t == nil || !t.References(evidence) {
		evidence = NotApplicable
		observation = strings.TrimSpace(observation + " " + evidenceNote)
	}

	return CriterionResult{
		Criterion:   c.Name,
		Score:       score,
		Label:       want,
		Observation: observation,
		Evidence:    evidence,
	}, nil
}

// parseScore accepts a JSON integer, an integral float or a numeric string.
func parseScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("score is missing")
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("score %s is not a number", raw)
		}
		n = json.Number(strings.TrimSpace(s))
	}

	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("score %s is not an integer", raw)
	}
	return int(f), nil
}

func stringField(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
