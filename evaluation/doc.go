/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evaluation turns a transcript and a rubric into scores.

It holds the pure stages of a run:

  - BuildPrompt renders the judge instruction and transcript content.
  - Validate parses the judge's raw text into per-criterion results.
  - Aggregate derives category and overall scores and the band.

None of these perform I/O. Validate never fails: criteria the judge got
wrong are substituted with the lowest score of their scale and marked
unscored, and a response with no recoverable JSON object becomes a
Degraded outcome that preserves the raw text.
*/
package evaluation
