/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoObject is returned when a response holds no recoverable JSON object.
var ErrNoObject = errors.New("response does not contain a JSON object")

// Method records how an object was recovered from a response.
type Method string

const (
	// Strict means the extracted text decoded as-is.
	Strict Method = "strict"
	// Trimmed means surrounding prose was cut before decoding.
	Trimmed Method = "trimmed"
	// Repaired means syntax errors were fixed before decoding.
	Repaired Method = "repaired"
)

// Object is a decoded top-level JSON object whose values are left raw.
type Object struct {
	Fields map[string]json.RawMessage
	Method Method
}

// ExtractObject recovers a single JSON object from a model response.
// Fences are stripped first, then the text is decoded strictly, then with
// surrounding prose trimmed, and finally after syntax repair. When the
// fenced candidate fails, the same steps run on the untouched response.
// Anything that still is not an object yields ErrNoObject.
func ExtractObject(responseText string) (*Object, error) {
	var candidates []string
	for _, c := range []string{ExtractJSON(responseText), strings.TrimSpace(responseText)} {
		if c != "" && !slices.Contains(candidates, c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrNoObject)
	}

	for _, text := range candidates {
		if fields, err := decodeObject(text); err == nil {
			return &Object{Fields: fields, Method: Strict}, nil
		}
	}
	for _, text := range candidates {
		if inner, ok := outermostObject(text); ok && inner != text {
			if fields, err := decodeObject(inner); err == nil {
				return &Object{Fields: fields, Method: Trimmed}, nil
			}
		}
	}

	var lastErr error
	for _, text := range candidates {
		repaired, err := jsonrepair.JSONRepair(text)
		if err != nil {
			lastErr = err
			continue
		}
		fields, err := decodeObject(repaired)
		if err != nil {
			lastErr = err
			continue
		}
		return &Object{Fields: fields, Method: Repaired}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoObject, lastErr)
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	// "null" decodes into a nil map without error.
	if fields == nil {
		return nil, errors.New("not an object")
	}
	return fields, nil
}
