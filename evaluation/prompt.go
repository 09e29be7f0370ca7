/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"errors"
	"slices"

	"chainguard.dev/crisiseval/agents/promptbuilder"
	"chainguard.dev/crisiseval/agents/schema"
	"chainguard.dev/crisiseval/rubric"
	"chainguard.dev/crisiseval/transcript"
)

// ErrEmptyTranscript is returned when a transcript has nothing to evaluate.
var ErrEmptyTranscript = errors.New("transcript has no utterances")

// Prompt is the pair of blocks sent to the judge.
type Prompt struct {
	Instruction string
	Content     string
}

// Verdict is the shape the judge must produce for each criterion.
type Verdict struct {
	Score       int    `json:"score" jsonschema:"required" jsonschema_description:"One score from the criterion's scale"`
	Label       string `json:"label" jsonschema:"required" jsonschema_description:"The label paired with the selected score"`
	Observation string `json:"observation" jsonschema:"required" jsonschema_description:"One or two sentences explaining the score"`
	Evidence    string `json:"evidence" jsonschema:"required" jsonschema_description:"A transcript line copied verbatim, or N/A"`
}

type promptCriterion struct {
	Name     string              `yaml:"name"`
	Question string              `yaml:"question"`
	Scale    []rubric.ScaleEntry `yaml:"scale"`
}

type promptCategory struct {
	Category string            `yaml:"category"`
	Criteria []promptCriterion `yaml:"criteria"`
}

// request binds one rubric into the instruction template.
type request struct {
	categories []promptCategory
	names      []string
	scores     []any
}

var _ promptbuilder.Bindable = (*request)(nil)

func newRequest(r *rubric.Rubric) *request {
	req := &request{names: r.Names()}
	var scores []int
	for _, cat := range r.Categories {
		pc := promptCategory{Category: cat.Name}
		for _, c := range cat.Criteria {
			pc.Criteria = append(pc.Criteria, promptCriterion{
				Name:     c.Name,
				Question: c.Question,
				Scale:    c.Scale,
			})
			for _, e := range c.Scale {
				scores = append(scores, e.Score)
			}
		}
		req.categories = append(req.categories, pc)
	}
	slices.Sort(scores)
	for _, s := range slices.Compact(scores) {
		req.scores = append(req.scores, s)
	}
	return req
}

// Bind implements promptbuilder.Bindable.
func (r *request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindYAML("rubric", r.categories)
	if err != nil {
		return nil, err
	}
	p, err = p.BindJSON("criterion_names", r.names)
	if err != nil {
		return nil, err
	}

	s := schema.ReflectType[Verdict]()
	if err := schema.WithEnum(s, "score", r.scores...); err != nil {
		return nil, err
	}
	return p.BindJSON("verdict_schema", s)
}

// BuildPrompt renders the judge instruction from the rubric and the content
// block from the transcript. Identical inputs give identical prompts.
func BuildPrompt(r *rubric.Rubric, t *transcript.Transcript) (Prompt, error) {
	if t == nil || len(t.Utterances) == 0 {
		return Prompt{}, ErrEmptyTranscript
	}
	instruction, err := promptbuilder.BuildFrom(instructionPrompt, newRequest(r))
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Instruction: instruction,
		Content:     t.Render(),
	}, nil
}
