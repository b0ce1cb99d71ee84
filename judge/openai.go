/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"net"

	"chainguard.dev/pairscreen/executor/openaiexecutor"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiJudge implements Interface against an OpenAI-compatible endpoint.
// The original deployment is a vLLM server hosting Qwen-VL.
type openaiJudge struct {
	executor openaiexecutor.Interface[*Request, *Verdict]
}

// newOpenAI creates a judge backed by an OpenAI-compatible chat endpoint.
func newOpenAI(baseURL, apiKey, model string, opts ...openaiexecutor.Option[*Request, *Verdict]) (Interface, error) {
	clientOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
	}
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(clientOpts...)

	execOpts := []openaiexecutor.Option[*Request, *Verdict]{ //nolint: prealloc
		openaiexecutor.WithModel[*Request, *Verdict](model),
		openaiexecutor.WithResponseParser[*Request, *Verdict](parseVerdict),
	}
	execOpts = append(execOpts, opts...)

	exec, err := openaiexecutor.New[*Request, *Verdict](client, screeningPrompt, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	return &openaiJudge{executor: exec}, nil
}

// Judge implements Interface
func (o *openaiJudge) Judge(ctx context.Context, request *Request) (*Verdict, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}
	verdict, err := o.executor.Execute(ctx, request, request.ImageMIME, request.Image)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	return verdict, nil
}

// classifyOpenAIError sorts executor errors into the taxonomy callers act
// on: credential failures stay fatal, transient failures become
// ErrUnavailable, parse failures are already ErrMalformedResponse.
func classifyOpenAIError(err error) error {
	if errors.Is(err, ErrMalformedResponse) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			// Credential problem, retrying other pairs cannot help.
			return err
		case 429:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if apiErr.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
