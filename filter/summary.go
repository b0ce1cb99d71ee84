/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filter

import (
	"bytes"
	"fmt"
	"io"

	"chainguard.dev/pairscreen/judge"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Summary aggregates the outcomes of one screening run.
type Summary struct {
	// Total is the number of pairs screened.
	Total int

	// HypoAccepted and HypoRejected count hypothesis-image verdicts.
	HypoAccepted int
	HypoRejected int

	// AdvAccepted and AdvRejected count adversarial-image verdicts.
	AdvAccepted int
	AdvRejected int

	// BothAccepted counts pairs exported for annotation.
	BothAccepted int

	// JudgeErrors counts error verdicts (transient or malformed judge
	// failures recorded for audit).
	JudgeErrors int

	// MissingImages counts missing verdicts.
	MissingImages int
}

// add folds one result into the summary.
func (s *Summary) add(res *PairResult) {
	s.Total++
	s.count(res.Hypothesis, &s.HypoAccepted, &s.HypoRejected)
	s.count(res.Adversarial, &s.AdvAccepted, &s.AdvRejected)
	if res.BothAccepted() {
		s.BothAccepted++
	}
}

func (s *Summary) count(v *judge.Verdict, accepted, rejected *int) {
	switch v.Decision {
	case judge.DecisionAccepted:
		*accepted++
	case judge.DecisionRejected:
		*rejected++
	case judge.DecisionError:
		s.JudgeErrors++
	case judge.DecisionMissing:
		s.MissingImages++
	}
}

// createStandardTable creates a table writer with standard formatting options
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 80,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Render formats the summary as a table for run diagnostics.
func (s *Summary) Render() string {
	var buf bytes.Buffer
	table := createStandardTable([]string{"Metric", "Count", "Rate"}, &buf)

	pct := func(n int) string {
		if s.Total == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", float64(n)/float64(s.Total)*100)
	}

	_ = table.Append([]string{"Total pairs", fmt.Sprintf("%d", s.Total), ""})
	_ = table.Append([]string{"Hypothesis accepted", fmt.Sprintf("%d", s.HypoAccepted), pct(s.HypoAccepted)})
	_ = table.Append([]string{"Hypothesis rejected", fmt.Sprintf("%d", s.HypoRejected), pct(s.HypoRejected)})
	_ = table.Append([]string{"Adversarial accepted", fmt.Sprintf("%d", s.AdvAccepted), pct(s.AdvAccepted)})
	_ = table.Append([]string{"Adversarial rejected", fmt.Sprintf("%d", s.AdvRejected), pct(s.AdvRejected)})
	_ = table.Append([]string{"Both accepted", fmt.Sprintf("%d", s.BothAccepted), pct(s.BothAccepted)})
	_ = table.Append([]string{"Judge errors", fmt.Sprintf("%d", s.JudgeErrors), ""})
	_ = table.Append([]string{"Missing images", fmt.Sprintf("%d", s.MissingImages), ""})
	_ = table.Render()

	return buf.String()
}
