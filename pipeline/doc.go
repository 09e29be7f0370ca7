/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package pipeline sequences one transcript evaluation.

An Orchestrator moves a run through Fetching, Building, Judging,
Validating, Aggregating and Persisting to Done. Any failure ends the run in
Failed with a typed error naming the stage:

	o, err := pipeline.New(store, j, rubric.Default(),
		pipeline.WithOutputBucket("analysis"),
	)
	if err != nil {
		return err
	}
	completion, err := o.Run(ctx, pipeline.Request{Notification: body})

Nothing is written unless every earlier stage succeeded and the context is
still live. The Orchestrator holds no per-run state and is safe for
concurrent use.
*/
package pipeline
