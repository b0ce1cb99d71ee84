/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result extracts typed JSON payloads from model text output,
// which routinely arrives wrapped in markdown code fences or surrounded
// by prose.
package result

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the JSON content of a model response. It prefers
// the first ```json fenced block, falls back to stripping bare fences,
// and otherwise returns the trimmed input.
func ExtractJSON(responseText string) string {
	// First choice: a ```json fence on its own line.
	if idx := strings.Index(responseText, "```json\n"); idx >= 0 {
		rest := responseText[idx+len("```json\n"):]
		if end := strings.Index(rest, "\n```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		// Unterminated fence: take everything after the marker.
		return strings.TrimSpace(rest)
	}

	trimmed := strings.TrimSpace(responseText)

	// A response that is nothing but a fenced block.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// Extract extracts JSON content from a text response and unmarshals it
// into T.
func Extract[T any](responseText string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(ExtractJSON(responseText)), &out); err != nil {
		return out, err
	}
	return out, nil
}
