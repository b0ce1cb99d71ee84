/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor executes single-shot multimodal requests against
// any OpenAI-compatible chat completion endpoint. Self-hosted vision
// models served by vLLM expose exactly this surface, which makes it the
// default path for judge traffic.
package openaiexecutor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"chainguard.dev/pairscreen/executor/retry"
	"chainguard.dev/pairscreen/metrics"
	"chainguard.dev/pairscreen/promptbuilder"
	"chainguard.dev/pairscreen/result"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// Interface is the public interface for OpenAI-compatible execution.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute sends one prompt, with an optional inline image, and parses
	// the model's reply into Response. A nil image sends text only.
	Execute(ctx context.Context, request Request, imageMIME string, image []byte) (Response, error)
}

// executor provides the private implementation.
type executor[Request promptbuilder.Bindable, Response any] struct {
	client       openai.Client
	prompt       *promptbuilder.Prompt
	model        string
	maxTokens    int64
	temperature  float64
	parser       func(string) (Response, error)
	genaiMetrics *metrics.GenAI
	retryConfig  retry.Config
}

// New creates a new executor with minimal required configuration.
func New[Request promptbuilder.Bindable, Response any](
	client openai.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request, Response]{
		client:       client,
		prompt:       prompt,
		model:        "Qwen/Qwen3-VL-8B-Instruct", // Default to the Qwen-VL checkpoint vLLM serves
		maxTokens:    512,
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

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2)
	if image != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s", imageMIME, base64.StdEncoding.EncodeToString(image))
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}
	parts = append(parts, openai.TextContentPart(prompt))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		// vLLM still keys off max_tokens rather than max_completion_tokens.
		MaxTokens:   openai.Int(e.maxTokens),
		Temperature: openai.Float(e.temperature),
	}

	log.With("model", e.model).
		With("prompt_length", len(prompt)).
		With("image_bytes", len(image)).
		Info("Requesting chat completion")

	completion, err := retry.Do(ctx, e.retryConfig, "chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return e.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return resp, fmt.Errorf("failed to complete chat request: %w", err)
	}

	if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
		e.genaiMetrics.RecordTokens(ctx, e.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	if len(completion.Choices) == 0 {
		return resp, errors.New("no choices in completion response")
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return resp, errors.New("no content in completion response")
	}

	parsed, err := e.parser(text)
	if err != nil {
		log.With("response", text).With("error", err).Error("Failed to parse completion response")
		return resp, fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed, nil
}
