/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googleexecutor executes single-shot multimodal requests against
// Gemini models via Vertex AI.
package googleexecutor

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/pairscreen/executor/retry"
	"chainguard.dev/pairscreen/metrics"
	"chainguard.dev/pairscreen/promptbuilder"
	"chainguard.dev/pairscreen/result"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Interface is the public interface for Gemini execution.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute sends one prompt, with an optional inline image, and parses
	// the model's reply into Response. A nil image sends text only.
	Execute(ctx context.Context, request Request, imageMIME string, image []byte) (Response, error)
}

// executor is the private implementation of Interface.
type executor[Request promptbuilder.Bindable, Response any] struct {
	client             *genai.Client
	prompt             *promptbuilder.Prompt
	systemInstructions *promptbuilder.Prompt
	model              string
	temperature        float32
	maxOutputTokens    int32
	responseMIMEType   string
	responseSchema     *genai.Schema
	parser             func(string) (Response, error)
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates a new Gemini executor with the given configuration.
func New[Request promptbuilder.Bindable, Response any](
	client *genai.Client,
	prompt *promptbuilder.Prompt,
	options ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	exec := &executor[Request, Response]{
		client:          client,
		prompt:          prompt,
		model:           "gemini-2.5-flash", // Default to Gemini 2.5 Flash
		temperature:     0.0,                // Deterministic by default; screening runs should be reproducible
		maxOutputTokens: 1024,
		parser:          result.Extract[Response],
		genaiMetrics:    metrics.NewGenAI("pairscreen.judge"),
		retryConfig:     retry.DefaultConfig(),
	}

	for _, opt := range options {
		if err := opt(exec); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return exec, nil
}

// Execute implements the Interface.
func (e *executor[Request, Response]) Execute(ctx context.Context, request Request, imageMIME string, image []byte) (resp Response, err error) {
	log := clog.FromContext(ctx)

	boundPrompt, err := request.Bind(e.prompt)
	if err != nil {
		return resp, fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := boundPrompt.Build()
	if err != nil {
		return resp, fmt.Errorf("failed to build prompt: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     ptr(e.temperature),
		MaxOutputTokens: e.maxOutputTokens,
	}
	if e.systemInstructions != nil {
		systemPrompt, err := e.systemInstructions.Build()
		if err != nil {
			return resp, fmt.Errorf("building system prompt: %w", err)
		}
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{
				Text: systemPrompt,
			}},
		}
	}
	if e.responseMIMEType != "" {
		config.ResponseMIMEType = e.responseMIMEType
	}
	if e.responseSchema != nil {
		config.ResponseSchema = e.responseSchema
	}

	parts := make([]*genai.Part, 0, 2)
	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: imageMIME,
				Data:     image,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{
		Role:  "user",
		Parts: parts,
	}}

	log.With("model", e.model).
		With("prompt_length", len(prompt)).
		With("image_bytes", len(image)).
		Info("Requesting Gemini content")

	response, err := retry.Do(ctx, e.retryConfig, "generate_content", isRetryableVertexError, func() (*genai.GenerateContentResponse, error) {
		return e.client.Models.GenerateContent(ctx, e.model, contents, config)
	})
	if err != nil {
		return resp, fmt.Errorf("failed to generate content with model %q: %w", e.model, err)
	}

	if response.UsageMetadata != nil {
		e.genaiMetrics.RecordTokens(ctx, e.model,
			int64(response.UsageMetadata.PromptTokenCount),
			int64(response.UsageMetadata.CandidatesTokenCount))
	}

	if len(response.Candidates) == 0 {
		return resp, errors.New("no content generated - no candidates")
	}
	candidate := response.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return resp, errors.New("no content generated - empty candidate")
	}

	var responseText string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			responseText = part.Text
		}
	}
	if responseText == "" {
		return resp, errors.New("no text content found in response")
	}

	parsed, err := e.parser(responseText)
	if err != nil {
		log.With("response", responseText).With("error", err).Error("Failed to parse Gemini response")
		return resp, fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed, nil
}

// ptr is a helper function to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
