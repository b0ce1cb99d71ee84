/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor executes single-shot multimodal requests against
// Claude via Vertex AI.
package claudeexecutor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"chainguard.dev/pairscreen/executor/retry"
	"chainguard.dev/pairscreen/metrics"
	"chainguard.dev/pairscreen/promptbuilder"
	"chainguard.dev/pairscreen/result"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// Interface is the public interface for Claude execution.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute sends one prompt, with an optional inline image, and parses
	// Claude's reply into Response. A nil image sends text only.
	Execute(ctx context.Context, request Request, imageMIME string, image []byte) (Response, error)
}

// executor provides the private implementation.
type executor[Request promptbuilder.Bindable, Response any] struct {
	client             anthropic.Client
	prompt             *promptbuilder.Prompt
	systemInstructions *promptbuilder.Prompt
	modelName          string
	maxTokens          int64
	temperature        float64
	parser             func(string) (Response, error)
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates a new executor with minimal required configuration.
func New[Request promptbuilder.Bindable, Response any](
	client anthropic.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request, Response]{
		client:       client,
		prompt:       prompt,
		modelName:    "claude-sonnet-4@20250514", // Default to Sonnet 4
		maxTokens:    1024,
		temperature:  0.0, // Deterministic by default; screening runs should be reproducible
		parser:       result.Extract[Response],
		genaiMetrics: metrics.NewGenAI("pairscreen.judge"),
		retryConfig:  retry.DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return e, nil
}

// Execute implements Interface.
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

	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(imageMIME, base64.StdEncoding.EncodeToString(image)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: blocks,
		}},
	}
	params.Temperature = anthropic.Float(e.temperature)

	if e.systemInstructions != nil {
		systemPrompt, err := e.systemInstructions.Build()
		if err != nil {
			return resp, fmt.Errorf("building system prompt: %w", err)
		}
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	log.With("model", e.modelName).
		With("prompt_length", len(prompt)).
		With("image_bytes", len(image)).
		Info("Requesting Claude message")

	message, err := retry.Do(ctx, e.retryConfig, "new_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return e.client.Messages.New(ctx, params)
	})
	if err != nil {
		return resp, fmt.Errorf("failed to create Claude message: %w", err)
	}

	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		e.genaiMetrics.RecordTokens(ctx, e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens)
	}

	var textContent string
	for _, content := range message.Content {
		if content.Type == "text" {
			textContent = content.Text
		}
	}
	if textContent == "" {
		return resp, errors.New("no text content in Claude's response")
	}

	parsed, err := e.parser(textContent)
	if err != nil {
		log.With("response", textContent).With("error", err).Error("Failed to parse Claude response")
		return resp, fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed, nil
}
