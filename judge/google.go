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

	"chainguard.dev/pairscreen/executor/googleexecutor"
	"chainguard.dev/pairscreen/schema"
	"google.golang.org/genai"
)

// googleJudge implements Interface using Gemini via Vertex AI
type googleJudge struct {
	executor googleexecutor.Interface[*Request, *Verdict]
}

// newGoogle creates a Gemini judge instance.
func newGoogle(ctx context.Context, projectID, region, model string, opts ...googleexecutor.Option[*Request, *Verdict]) (Interface, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	execOpts := []googleexecutor.Option[*Request, *Verdict]{ //nolint: prealloc
		googleexecutor.WithModel[*Request, *Verdict](model),
		googleexecutor.WithMaxOutputTokens[*Request, *Verdict](1024),
		googleexecutor.WithResponseMIMEType[*Request, *Verdict]("application/json"),
		googleexecutor.WithResponseSchema[*Request, *Verdict](schema.GenAIType[modelVerdict]()),
		googleexecutor.WithResponseParser[*Request, *Verdict](parseVerdict),
	}
	execOpts = append(execOpts, opts...)

	exec, err := googleexecutor.New[*Request, *Verdict](client, screeningPrompt, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	return &googleJudge{executor: exec}, nil
}

// Judge implements Interface
func (g *googleJudge) Judge(ctx context.Context, request *Request) (*Verdict, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}
	verdict, err := g.executor.Execute(ctx, request, request.ImageMIME, request.Image)
	if err != nil {
		return nil, classifyVertexError(err)
	}
	return verdict, nil
}

// classifyVertexError sorts executor errors into the taxonomy callers act
// on. The genai SDK does not expose typed status errors, so this matches
// on the rendered message the same way the retry predicate does.
func classifyVertexError(err error) error {
	if errors.Is(err, ErrMalformedResponse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "401"),
		strings.Contains(errStr, "403"),
		strings.Contains(errStr, "PERMISSION_DENIED"),
		strings.Contains(errStr, "UNAUTHENTICATED"):
		// Credential problem, retrying other pairs cannot help.
		return err
	case strings.Contains(errStr, "429"),
		strings.Contains(errStr, "RESOURCE_EXHAUSTED"),
		strings.Contains(errStr, "503"),
		strings.Contains(errStr, "Overloaded"),
		strings.Contains(errStr, "Internal error"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
