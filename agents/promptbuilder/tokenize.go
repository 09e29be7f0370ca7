/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// segment is either literal template text or a placeholder reference.
// Exactly one of text or name is set.
type segment struct {
	text string
	name string
}

// tokenize splits a template into literal text and {{name}} placeholders.
// It runs once per template so bound values are never re-scanned.
func tokenize(template string) ([]segment, error) {
	var segments []segment

	for len(template) > 0 {
		start := strings.Index(template, "{{")
		if start == -1 {
			segments = append(segments, segment{text: template})
			break
		}
		if start > 0 {
			segments = append(segments, segment{text: template[:start]})
		}

		end := strings.Index(template[start:], "}}")
		if end == -1 {
			return nil, errors.New("unclosed binding: missing '}}'")
		}
		end += start + 2

		name := strings.TrimSpace(template[start+2 : end-2])
		if !isValidIdentifier(name) {
			return nil, fmt.Errorf("invalid binding identifier %q", name)
		}
		segments = append(segments, segment{name: name})

		template = template[end:]
	}

	return segments, nil
}

// isValidIdentifier checks if a string is a valid binding identifier
// Valid identifiers must start with a letter and contain only letters, digits, and underscores
func isValidIdentifier(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
