/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"strings"
)

const fence = "```"

// ExtractJSON extracts JSON content from a text response that may contain markdown code blocks.
// Fences are found anywhere in the text, inline or on their own line, with
// any language tag. The first block that looks like JSON is returned, then
// the first non-empty block. Without a block the trimmed input is returned
// with a wrapping ```json ... ``` pair or a stray trailing fence removed.
func ExtractJSON(responseText string) string {
	responseText = strings.ReplaceAll(responseText, "\r\n", "\n")

	blocks := fencedBlocks(responseText)
	for _, b := range blocks {
		if strings.HasPrefix(b, "{") || strings.HasPrefix(b, "[") {
			return b
		}
	}
	if len(blocks) > 0 {
		return blocks[0]
	}

	text := strings.TrimSpace(responseText)
	if rest, ok := strings.CutPrefix(text, fence); ok {
		text = skipLanguageTag(rest)
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), fence))
}

// fencedBlocks returns the trimmed, non-empty bodies of every fenced block
// in text. An unterminated fence keeps what followed the marker, so a lone
// closing fence at the end yields nothing.
func fencedBlocks(text string) []string {
	var blocks []string
	for {
		start := strings.Index(text, fence)
		if start == -1 {
			return blocks
		}
		rest := skipLanguageTag(text[start+len(fence):])
		end := strings.Index(rest, fence)
		if end == -1 {
			if body := strings.TrimSpace(rest); body != "" {
				blocks = append(blocks, body)
			}
			return blocks
		}
		if body := strings.TrimSpace(rest[:end]); body != "" {
			blocks = append(blocks, body)
		}
		text = rest[end+len(fence):]
	}
}

// skipLanguageTag drops an info string such as "json" that directly follows
// an opening fence.
func skipLanguageTag(s string) string {
	i := 0
	for i < len(s) && isTagByte(s[i]) {
		i++
	}
	if i == 0 {
		return s
	}
	if i == len(s) {
		return ""
	}
	switch s[i] {
	case ' ', '\t', '\n', '{', '[':
		return s[i:]
	}
	return s
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '+'
}

// outermostObject returns the span from the first '{' to the last '}'.
// Models sometimes wrap an otherwise valid object in a sentence.
func outermostObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
