/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ContentType is the media type of persisted documents.
const ContentType = "application/json"

// Document encodes the artifact persisted for a run. A scored outcome is
// written from its aggregated result, a degraded one from its raw text.
func Document(o Outcome, res *EvaluationResult) ([]byte, error) {
	var v any
	switch o := o.(type) {
	case *Scored:
		if res == nil {
			return nil, errors.New("scored outcome requires an aggregated result")
		}
		v = res
	case *Degraded:
		v = o
	default:
		return nil, fmt.Errorf("unknown outcome %T", o)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return b, nil
}
