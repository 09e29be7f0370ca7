/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package judge invokes a language model as an evaluator.

A judge sends a single instruction block and a single content block and
returns the model's raw text. It does not parse or validate that text and it
does not retry. Validation belongs to the caller, and redelivery belongs to
the work queue.

The provider is chosen from the model name:

	j, err := judge.New(ctx, "claude-sonnet-4@20250514",
		judge.WithVertex(projectID, "us-east5"),
	)
	if err != nil {
		return err
	}
	raw, err := j.Invoke(ctx, instruction, transcript)

Models starting with claude- use Anthropic, gemini- use Google GenAI and
gpt- or o1/o3/o4 use OpenAI. Sampling defaults to temperature 0.1 and top_p
0.9. The o-series takes neither, so both are left unset for those models.

Every invocation opens an agenttrace call and records genai metrics. Any
failure, including an empty response, is returned as an *InvocationError.
*/
package judge
