/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"chainguard.dev/crisiseval/rubric"
)

// Aggregate derives category and overall scores from per-criterion results.
// Criteria absent from results count as unscored, so every rubric criterion
// appears in the output exactly once.
func Aggregate(results map[string]CriterionResult, r *rubric.Rubric) *EvaluationResult {
	out := &EvaluationResult{
		RubricVersion: r.Version,
		Categories:    make([]CategoryResult, 0, len(r.Categories)),
	}

	for _, cat := range r.Categories {
		cr := CategoryResult{
			Name:     cat.Name,
			Criteria: make([]CriterionResult, 0, len(cat.Criteria)),
		}
		for _, c := range cat.Criteria {
			res, ok := results[c.Name]
			if !ok || !c.HasScore(res.Score) {
				res = Unscored(c, "criterion missing from results")
			}
			res.Criterion = c.Name
			cr.Criteria = append(cr.Criteria, res)
			cr.Score += res.Score * r.Multiplier
			cr.MaxScore += c.Weight * r.Multiplier
		}
		out.Categories = append(out.Categories, cr)
		out.Score += cr.Score
		out.MaxScore += cr.MaxScore
	}

	if out.MaxScore > 0 {
		out.Percentage = clamp(100*float64(out.Score)/float64(out.MaxScore), 0, 100)
	}
	out.Band = r.Band(out.Percentage)
	return out
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
