/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package labelstudio builds Label Studio import tasks for screened
// image pairs.
package labelstudio

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"chainguard.dev/pairscreen/corpus"
)

// ModelVersion tags predictions so annotators can tell machine verdicts
// from human ones.
const ModelVersion = "mllm_filter_v1"

// TaskData is the data block annotators see for one pair.
type TaskData struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Hypothesis   string `json:"hypothesis"`
	Adversarial  string `json:"adversarial"`
	HypoImageURL string `json:"hypo_image_url"`
	AdvImageURL  string `json:"adv_image_url"`
	HypoID       string `json:"hypo_id"`
	AdvID        string `json:"adv_id"`
	Category     string `json:"category"`
	PairKey      string `json:"pair_key"`
}

// ChoiceValue holds the selected choices for a prediction result.
type ChoiceValue struct {
	Choices []string `json:"choices"`
}

// PredictionResult is one pre-annotation within a prediction.
type PredictionResult struct {
	FromName string      `json:"from_name"`
	ToName   string      `json:"to_name"`
	Type     string      `json:"type"`
	Value    ChoiceValue `json:"value"`
}

// Prediction pre-annotates a task with the judge's verdicts.
type Prediction struct {
	ModelVersion string             `json:"model_version"`
	Result       []PredictionResult `json:"result"`
}

// TaskMeta carries the judge's reasoning for annotator reference.
type TaskMeta struct {
	HypoReasoning string `json:"hypo_reasoning"`
	AdvReasoning  string `json:"adv_reasoning"`
}

// Task is one Label Studio import task.
type Task struct {
	Data        TaskData     `json:"data"`
	Predictions []Prediction `json:"predictions"`
	Meta        TaskMeta     `json:"meta"`
}

// DataURL encodes image bytes as a base64 data URL, which lets tasks be
// imported without hosting the images anywhere. The format is inferred
// from the filename; unknown extensions are treated as JPEG.
func DataURL(filename string, image []byte) string {
	format := "jpeg"
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		format = "png"
	case ".webp":
		format = "webp"
	case ".gif":
		format = "gif"
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(image))
}

// NewAcceptedTask builds the import task for a pair whose two images were
// both accepted. The images are inlined as data URLs and the judge's
// accept verdicts become choice predictions on the two image regions.
func NewAcceptedTask(pair *corpus.Pair, hypoReasoning, advReasoning string, hypoImage, advImage []byte) Task {
	return Task{
		Data: TaskData{
			ID:           pair.ID,
			Text:         pair.Text,
			Hypothesis:   pair.Hypothesis,
			Adversarial:  pair.Adversarial,
			HypoImageURL: DataURL(pair.HypoFile, hypoImage),
			AdvImageURL:  DataURL(pair.AdvFile, advImage),
			HypoID:       pair.HypoFile,
			AdvID:        pair.AdvFile,
			Category:     pair.Category,
			PairKey:      pair.Key(),
		},
		Predictions: []Prediction{{
			ModelVersion: ModelVersion,
			Result: []PredictionResult{{
				FromName: "hypo_decision",
				ToName:   "hypo_image",
				Type:     "choices",
				Value:    ChoiceValue{Choices: []string{"accepted"}},
			}, {
				FromName: "adv_decision",
				ToName:   "adv_image",
				Type:     "choices",
				Value:    ChoiceValue{Choices: []string{"accepted"}},
			}},
		}},
		Meta: TaskMeta{
			HypoReasoning: hypoReasoning,
			AdvReasoning:  advReasoning,
		},
	}
}
