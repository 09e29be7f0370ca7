/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result recovers structured JSON from free-form model responses.

Judges are told to answer with a bare JSON object, but responses still arrive
wrapped in markdown fences, prefixed with a sentence, or with small syntax
slips such as trailing commas. ExtractJSON strips fences. ExtractObject goes
further and returns the top-level object with its values left as raw JSON, so
callers can validate each field on its own terms:

	obj, err := result.ExtractObject(response)
	if errors.Is(err, result.ErrNoObject) {
		// keep the raw text, nothing is scoreable
	}
	for key, raw := range obj.Fields {
		...
	}

Object.Method reports which recovery step succeeded so callers can log how
lenient they had to be.
*/
package result
