/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge provides vision-language model screening of generated
// images against the captions they were generated from.
//
// # Overview
//
// The judge package provides:
//   - A common Interface for different judge backends
//   - An OpenAI-compatible backend for self-hosted vLLM deployments
//   - Claude and Gemini backends via Vertex AI
//   - A shared screening rubric and a tolerant response parser
//
// # Usage
//
//	j, err := judge.New(ctx, judge.Config{
//		Backend: judge.BackendOpenAI,
//		BaseURL: "http://localhost:8000/v1",
//	})
//	if err != nil {
//		return err
//	}
//
//	verdict, err := j.Judge(ctx, &judge.Request{
//		Text:      "A dog is playing fetch in the park.",
//		Caption:   "A dog chases a ball across the grass.",
//		Kind:      judge.HypothesisImage,
//		ImageMIME: "image/jpeg",
//		Image:     imageBytes,
//	})
//
// # Error handling
//
// Judge returns ErrUnavailable for transient failures (rate limits,
// timeouts, network errors) so a batch caller can record the failure and
// move on, and ErrMalformedResponse when the model's output cannot be
// parsed into a decision. Credential failures are returned as-is; they
// are fatal to a run.
package judge
