/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry counters for the screening run:
// token usage per model backend and verdict counts per decision. Metric
// creation degrades to no-ops rather than failing the run.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI records token usage for judge model calls.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
}

// NewGenAI creates token counters under the given meter name. The meter
// name is shared across executors; the model name is a dimension.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	return &GenAI{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
	}
}

// RecordTokens records prompt and completion token usage for a model.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)
}

// Screening records pair-level outcomes of a filtering run.
type Screening struct {
	verdicts metric.Int64Counter
	pairs    metric.Int64Counter
}

// NewScreening creates verdict and pair counters under the given meter name.
func NewScreening(meterName string) *Screening {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	verdicts, err := meter.Int64Counter("screening.verdicts",
		metric.WithDescription("The number of per-image verdicts, by decision"),
		metric.WithUnit("{verdicts}"))
	if err != nil {
		slog.Warn("Failed to create verdicts counter, metrics will be disabled", "error", err, "meter", meterName)
		verdicts = noop.Int64Counter{}
	}

	pairs, err := meter.Int64Counter("screening.pairs",
		metric.WithDescription("The number of pairs evaluated, by acceptance"),
		metric.WithUnit("{pairs}"))
	if err != nil {
		slog.Warn("Failed to create pairs counter, metrics will be disabled", "error", err, "meter", meterName)
		pairs = noop.Int64Counter{}
	}

	return &Screening{verdicts: verdicts, pairs: pairs}
}

// RecordVerdict counts a single per-image verdict.
func (m *Screening) RecordVerdict(ctx context.Context, category, kind, decision string) {
	m.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("kind", kind),
		attribute.String("decision", decision),
	))
}

// RecordPair counts a fully evaluated pair.
func (m *Screening) RecordPair(ctx context.Context, category string, bothAccepted bool) {
	m.pairs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("both_accepted", bothAccepted),
	))
}
