/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import "chainguard.dev/crisiseval/agents/promptbuilder"

// lineFormat describes how Transcript.Render lays out each utterance.
const lineFormat = "<beginTime> <speaker>: <text>"

// instructionPrompt is the system instruction for scoring a call. The
// fixed literals are bound once; per-rubric values are bound per request.
var instructionPrompt = promptbuilder.MustNewPrompt(`<task>
You are a quality reviewer for a crisis counseling line. The user message is
the transcript of one call, one utterance per line in the form
"{{line_format}}". Evaluate the counselor against every
criterion of the rubric below.
</task>

<rubric>
{{rubric}}
</rubric>

<instructions>
1. Answer every criterion using only what the transcript shows.
2. Select exactly one score from the criterion's scale and use the label paired with that score.
3. When the evidence is ambiguous, select the lower, stricter score. Never treat a criterion as met because nothing contradicts it.
4. Write a short observation that explains the score.
5. For evidence, copy one transcript line verbatim, including its timestamp and speaker. Use "{{not_applicable}}" only when no line supports the score.
</instructions>

<output_format>
Return a single JSON object. Its keys must be exactly these criterion names:
{{criterion_names}}

The value of each key must match this schema:
{{verdict_schema}}

Return only the JSON object. Do not add prose, commentary or markdown code fences.
</output_format>`).
	MustBindStringLiteral("line_format", lineFormat).
	MustBindStringLiteral("not_applicable", NotApplicable)
