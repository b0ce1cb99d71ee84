/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chainguard-dev/clog"
)

// decodePairs reads a JSONL stream of pair records. Blank lines and lines
// that fail to parse are skipped with a warning, matching how the corpora
// were produced (hand-edited at times).
func decodePairs(ctx context.Context, r io.Reader, category string) ([]Pair, error) {
	log := clog.FromContext(ctx)

	scanner := bufio.NewScanner(r)
	// Some records carry long captions; the default 64K line limit is
	// not enough headroom.
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var pairs []Pair
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var p Pair
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			log.With("line", lineNo).With("error", err).Warn("Skipping malformed corpus line")
			continue
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("unknown_%d", len(pairs))
		}
		p.Category = category
		pairs = append(pairs, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return pairs, nil
}
