/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/pairscreen/executor/claudeexecutor"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

// claudeJudge implements Interface using Claude via Vertex AI
type claudeJudge struct {
	executor claudeexecutor.Interface[*Request, *Verdict]
}

// newClaude creates a Claude judge instance authenticated through Vertex AI.
func newClaude(ctx context.Context, projectID, region, model string, opts ...claudeexecutor.Option[*Request, *Verdict]) (Interface, error) {
	client := anthropic.NewClient(
		vertex.WithGoogleAuth(ctx, region, projectID),
	)

	execOpts := []claudeexecutor.Option[*Request, *Verdict]{ //nolint: prealloc
		claudeexecutor.WithModel[*Request, *Verdict](model),
		claudeexecutor.WithMaxTokens[*Request, *Verdict](1024),
		claudeexecutor.WithResponseParser[*Request, *Verdict](parseVerdict),
	}
	execOpts = append(execOpts, opts...)

	exec, err := claudeexecutor.New[*Request, *Verdict](client, screeningPrompt, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	return &claudeJudge{executor: exec}, nil
}

// Judge implements Interface
func (c *claudeJudge) Judge(ctx context.Context, request *Request) (*Verdict, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}
	verdict, err := c.executor.Execute(ctx, request, request.ImageMIME, request.Image)
	if err != nil {
		return nil, classifyClaudeError(err)
	}
	return verdict, nil
}

// classifyClaudeError sorts executor errors into the taxonomy callers act on.
func classifyClaudeError(err error) error {
	if errors.Is(err, ErrMalformedResponse) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			// Credential problem, retrying other pairs cannot help.
			return err
		case 429, 529:
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
	return err
}
