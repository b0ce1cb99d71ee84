/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output filenames. The detailed stream is JSONL keyed by index window;
// the accepted export also carries the category since it feeds per-category
// annotation projects.
func detailedPath(dir string, start, end int) string {
	return filepath.Join(dir, fmt.Sprintf("detailed_results_%d_%d.jsonl", start, end))
}

func acceptedPath(dir, category string, start, end int) string {
	return filepath.Join(dir, fmt.Sprintf("label_studio_accepted_%s_%d_%d.json", category, start, end))
}

func detailedCheckpointPath(dir string, start, count int) string {
	return filepath.Join(dir, fmt.Sprintf("detailed_results_checkpoint_%d_%d.jsonl", start, count))
}

func acceptedCheckpointPath(dir, category string, start, count int) string {
	return filepath.Join(dir, fmt.Sprintf("label_studio_accepted_checkpoint_%s_%d_%d.json", category, start, count))
}

// detailedWriter streams audit records to a JSONL file, one line per
// screened pair, flushed as soon as the pair completes so a crash loses
// at most the in-flight pair.
type detailedWriter struct {
	f *os.File
}

func newDetailedWriter(path string) (*detailedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating detailed results file: %w", err)
	}
	return &detailedWriter{f: f}, nil
}

// Write appends one result line.
func (w *detailedWriter) Write(res *PairResult) error {
	line, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if _, err := w.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

func (w *detailedWriter) Close() error {
	return w.f.Close()
}

// writeDetailedSnapshot writes a whole detailed stream in one shot, used
// for checkpoints.
func writeDetailedSnapshot(path string, results []*PairResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating checkpoint file: %w", err)
	}
	defer f.Close()
	for _, res := range results {
		line, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing checkpoint: %w", err)
		}
	}
	return nil
}
