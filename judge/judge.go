/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/pairscreen/executor/claudeexecutor"
	"chainguard.dev/pairscreen/executor/googleexecutor"
	"chainguard.dev/pairscreen/executor/openaiexecutor"
)

// Backend names accepted by Config.Backend.
const (
	// BackendOpenAI targets an OpenAI-compatible chat endpoint, such as a
	// vLLM server hosting Qwen-VL. This is the default.
	BackendOpenAI = "openai"
	// BackendClaude targets Claude on Vertex AI.
	BackendClaude = "claude"
	// BackendGoogle targets Gemini on Vertex AI.
	BackendGoogle = "google"
)

// DefaultBaseURL is where a locally served vLLM endpoint listens.
const DefaultBaseURL = "http://localhost:8000/v1"

// Config selects and configures a judge backend.
type Config struct {
	// Backend is one of BackendOpenAI, BackendClaude, BackendGoogle.
	// Empty defaults to BackendOpenAI.
	Backend string

	// Model is the model name. Empty uses the backend's default.
	Model string

	// BaseURL is the OpenAI-compatible endpoint (openai backend only).
	BaseURL string

	// APIKey authenticates against the endpoint (openai backend only).
	// vLLM deployments typically accept any value.
	APIKey string

	// Project and Region locate the Vertex AI deployment
	// (claude and google backends).
	Project string
	Region  string

	// MaxTokens caps response length. Zero uses the backend default.
	MaxTokens int64

	// Temperature sets sampling temperature. Judges default to 0 for
	// reproducible runs.
	Temperature float64
}

// New creates an Interface for the configured backend.
func New(ctx context.Context, cfg Config) (Interface, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendOpenAI
	}

	switch strings.ToLower(backend) {
	case BackendOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = "Qwen/Qwen3-VL-8B-Instruct"
		}
		var opts []openaiexecutor.Option[*Request, *Verdict]
		if cfg.MaxTokens > 0 {
			opts = append(opts, openaiexecutor.WithMaxTokens[*Request, *Verdict](cfg.MaxTokens))
		}
		if cfg.Temperature > 0 {
			opts = append(opts, openaiexecutor.WithTemperature[*Request, *Verdict](cfg.Temperature))
		}
		return newOpenAI(baseURL, cfg.APIKey, model, opts...)

	case BackendClaude:
		if cfg.Project == "" || cfg.Region == "" {
			return nil, errors.New("project and region are required for the claude backend")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-sonnet-4@20250514"
		}
		var opts []claudeexecutor.Option[*Request, *Verdict]
		if cfg.MaxTokens > 0 {
			opts = append(opts, claudeexecutor.WithMaxTokens[*Request, *Verdict](cfg.MaxTokens))
		}
		if cfg.Temperature > 0 {
			opts = append(opts, claudeexecutor.WithTemperature[*Request, *Verdict](cfg.Temperature))
		}
		return newClaude(ctx, cfg.Project, cfg.Region, model, opts...)

	case BackendGoogle:
		if cfg.Project == "" || cfg.Region == "" {
			return nil, errors.New("project and region are required for the google backend")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		var opts []googleexecutor.Option[*Request, *Verdict]
		if cfg.MaxTokens > 0 {
			opts = append(opts, googleexecutor.WithMaxOutputTokens[*Request, *Verdict](int32(cfg.MaxTokens)))
		}
		if cfg.Temperature > 0 {
			opts = append(opts, googleexecutor.WithTemperature[*Request, *Verdict](float32(cfg.Temperature)))
		}
		return newGoogle(ctx, cfg.Project, cfg.Region, model, opts...)

	default:
		return nil, fmt.Errorf("unsupported backend: %q (expected openai, claude, or google)", cfg.Backend)
	}
}

// validate checks that a request carries everything a backend needs.
func (r *Request) validate() error {
	if r == nil {
		return errors.New("request is required")
	}
	if r.Caption == "" {
		return errors.New("caption is required")
	}
	switch r.Kind {
	case HypothesisImage, AdversarialImage:
	default:
		return fmt.Errorf("unsupported image kind: %q", r.Kind)
	}
	if len(r.Image) == 0 {
		return errors.New("image bytes are required")
	}
	if r.ImageMIME == "" {
		return errors.New("image MIME type is required")
	}
	return nil
}
