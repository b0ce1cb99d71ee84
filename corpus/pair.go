/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package corpus loads visual-entailment pair corpora from Google Drive
// or a local directory tree.
package corpus

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// ImageKind identifies which of a pair's two images is meant.
type ImageKind string

const (
	// Hypothesis is the image generated from the hypothesis caption.
	Hypothesis ImageKind = "hypothesis"
	// Adversarial is the image generated from the adversarial caption.
	Adversarial ImageKind = "adversarial"
)

// Pair is one corpus record: a source sentence, its hypothesis and
// adversarial captions, and the filenames of the two generated images.
// Pairs are immutable after load.
type Pair struct {
	// ID is the record identifier. Records without one are assigned
	// "unknown_{index}" at load time.
	ID string `json:"id"`

	// Text is the source sentence.
	Text string `json:"text"`

	// Hypothesis is the caption entailed by Text.
	Hypothesis string `json:"hypothesis"`

	// Adversarial is the contradicting caption.
	Adversarial string `json:"adversarial"`

	// HypoFile is the filename of the hypothesis image.
	HypoFile string `json:"hypo_id"`

	// AdvFile is the filename of the adversarial image.
	AdvFile string `json:"adversarial_id"`

	// Category is the corpus the pair was loaded from.
	Category string `json:"-"`
}

// Key identifies the pair by its two image filenames.
func (p *Pair) Key() string {
	return fmt.Sprintf("%s|%s", p.HypoFile, p.AdvFile)
}

// Caption returns the caption matching the image kind.
func (p *Pair) Caption(kind ImageKind) string {
	if kind == Adversarial {
		return p.Adversarial
	}
	return p.Hypothesis
}

// Filename returns the image filename matching the image kind.
func (p *Pair) Filename(kind ImageKind) string {
	if kind == Adversarial {
		return p.AdvFile
	}
	return p.HypoFile
}

// MIMEType guesses an image media type from a filename extension.
// Unknown extensions fall back to image/jpeg, which is what the corpora
// predominantly contain.
func MIMEType(filename string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}
