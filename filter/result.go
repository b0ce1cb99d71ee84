/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package filter runs a pair corpus through a vision-language judge and
// splits the outcomes into a detailed audit stream and an accepted-only
// annotation export.
package filter

import (
	"encoding/json"

	"chainguard.dev/pairscreen/corpus"
	"chainguard.dev/pairscreen/judge"
)

// PairResult is the outcome of screening one pair: the pair itself plus
// the verdicts for its two images.
type PairResult struct {
	// Pair is the corpus record that was screened.
	Pair corpus.Pair

	// Index is the pair's absolute position in the corpus.
	Index int

	// Hypothesis is the verdict for the hypothesis image.
	Hypothesis *judge.Verdict

	// Adversarial is the verdict for the adversarial image.
	Adversarial *judge.Verdict
}

// BothAccepted reports whether both images were accepted. It is always
// recomputed from the two verdicts, never stored, so the combined outcome
// cannot drift from its inputs.
func (r *PairResult) BothAccepted() bool {
	return r.Hypothesis.Accepted() && r.Adversarial.Accepted()
}

// detailedRecord is the flattened shape of one line in the detailed
// results stream.
type detailedRecord struct {
	RecordID             string `json:"record_id"`
	Index                int    `json:"index"`
	Text                 string `json:"text"`
	HypothesisCaption    string `json:"hypothesis_caption"`
	AdversarialCaption   string `json:"adversarial_caption"`
	HypoFilename         string `json:"hypo_filename"`
	AdvFilename          string `json:"adv_filename"`
	Category             string `json:"category"`
	PairKey              string `json:"pair_key"`
	HypothesisDecision   string `json:"hypothesis_decision"`
	HypothesisReasoning  string `json:"hypothesis_reasoning"`
	AdversarialDecision  string `json:"adversarial_decision"`
	AdversarialReasoning string `json:"adversarial_reasoning"`
	BothAccepted         bool   `json:"both_accepted"`
}

// MarshalJSON emits the flattened audit record, deriving both_accepted at
// marshal time.
func (r *PairResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(detailedRecord{
		RecordID:             r.Pair.ID,
		Index:                r.Index,
		Text:                 r.Pair.Text,
		HypothesisCaption:    r.Pair.Hypothesis,
		AdversarialCaption:   r.Pair.Adversarial,
		HypoFilename:         r.Pair.HypoFile,
		AdvFilename:          r.Pair.AdvFile,
		Category:             r.Pair.Category,
		PairKey:              r.Pair.Key(),
		HypothesisDecision:   string(r.Hypothesis.Decision),
		HypothesisReasoning:  r.Hypothesis.Reasoning,
		AdversarialDecision:  string(r.Adversarial.Decision),
		AdversarialReasoning: r.Adversarial.Reasoning,
		BothAccepted:         r.BothAccepted(),
	})
}
