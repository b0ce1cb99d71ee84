/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"
	"strings"
)

// ImageKind identifies which side of a pair an image belongs to.
type ImageKind string

const (
	// HypothesisImage is the image generated from the hypothesis caption.
	HypothesisImage ImageKind = "hypothesis"
	// AdversarialImage is the image generated from the adversarial caption.
	AdversarialImage ImageKind = "adversarial"
)

// Decision is the judge's ruling on a single caption/image pairing.
type Decision string

const (
	// DecisionAccepted means the caption accurately describes the image.
	DecisionAccepted Decision = "accepted"
	// DecisionRejected means the caption does not match the image.
	DecisionRejected Decision = "rejected"
	// DecisionError means the judge could not produce a usable ruling.
	DecisionError Decision = "error"
	// DecisionMissing means the image could not be fetched, so no judgment ran.
	DecisionMissing Decision = "missing"
)

// Verdict is the judgment for one caption/image pairing.
type Verdict struct {
	// Decision is the ruling.
	Decision Decision `json:"decision"`

	// Reasoning explains the decision.
	Reasoning string `json:"reasoning"`
}

// Accepted reports whether the verdict is an accept.
func (v *Verdict) Accepted() bool {
	return v != nil && v.Decision == DecisionAccepted
}

// String returns a formatted representation of the verdict.
func (v *Verdict) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decision: %s", v.Decision))
	if v.Reasoning != "" {
		sb.WriteString(fmt.Sprintf(" - %s", v.Reasoning))
	}
	return sb.String()
}

// Request contains the context for one judgment.
type Request struct {
	// Text is the source sentence the pair was generated from.
	Text string `json:"text"`

	// Caption is the caption the image was generated from. For hypothesis
	// images this is the hypothesis; for adversarial images the adversarial
	// rewrite.
	Caption string `json:"caption"`

	// Kind identifies which side of the pair is being judged.
	Kind ImageKind `json:"kind"`

	// ImageMIME is the media type of Image, e.g. "image/jpeg".
	ImageMIME string `json:"-"`

	// Image is the raw image bytes.
	Image []byte `json:"-"`
}

// Interface defines the contract for judge implementations.
type Interface interface {
	// Judge evaluates whether the request's caption accurately describes its
	// image. Transient failures are reported as ErrUnavailable and unparsable
	// model output as ErrMalformedResponse; anything else is fatal to the run.
	Judge(ctx context.Context, request *Request) (*Verdict, error)
}
