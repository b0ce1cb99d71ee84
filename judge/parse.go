/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"
	"strings"

	"chainguard.dev/pairscreen/result"
)

// modelVerdict is the JSON shape requested from the model.
type modelVerdict struct {
	Decision  string `json:"decision" jsonschema:"required,enum=accept,enum=reject,description=Whether the image faithfully depicts the caption"`
	Reasoning string `json:"reasoning" jsonschema:"required,description=One or two sentences explaining the decision"`
}

// parseVerdict turns raw model text into a Verdict. It first tries the
// requested JSON shape, then falls back to scanning for a "Decision:" line,
// which some models emit despite the JSON instruction. Anything else is
// ErrMalformedResponse.
func parseVerdict(text string) (*Verdict, error) {
	if mv, err := result.Extract[modelVerdict](text); err == nil {
		if decision, ok := normalizeDecision(mv.Decision); ok {
			return &Verdict{Decision: decision, Reasoning: strings.TrimSpace(mv.Reasoning)}, nil
		}
	}

	// Fallback: a free-text "Decision: ACCEPT" line, with any "Reasoning:"
	// line as the explanation.
	var decision Decision
	var found bool
	var reasoning string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "decision:"):
			if d, ok := normalizeDecision(line[len("decision:"):]); ok {
				decision, found = d, true
			}
		case strings.HasPrefix(lower, "reasoning:"):
			reasoning = strings.TrimSpace(line[len("reasoning:"):])
		}
	}
	if found {
		return &Verdict{Decision: decision, Reasoning: reasoning}, nil
	}

	return nil, fmt.Errorf("%w: no decision found in %q", ErrMalformedResponse, truncate(text, 200))
}

// normalizeDecision maps the model's wording onto a Decision. Models
// sometimes echo the bracketed template ("[ACCEPT]"), so brackets are
// stripped along with quoting and punctuation.
func normalizeDecision(s string) (Decision, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'.,![]`))
	switch {
	case strings.HasPrefix(s, "accept"):
		return DecisionAccepted, true
	case strings.HasPrefix(s, "reject"):
		return DecisionRejected, true
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
