/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"chainguard.dev/pairscreen/corpus"
	"chainguard.dev/pairscreen/judge"
	"chainguard.dev/pairscreen/labelstudio"
	"github.com/google/go-cmp/cmp"
)

// fakeStore serves a fixed pair list and in-memory images. Filenames in
// the missing set return ErrImageNotFound.
type fakeStore struct {
	pairs   []corpus.Pair
	missing map[string]bool

	mu        sync.Mutex
	pairCalls int
}

func (s *fakeStore) Pairs(context.Context) ([]corpus.Pair, error) {
	s.mu.Lock()
	s.pairCalls++
	s.mu.Unlock()
	return s.pairs, nil
}

func (s *fakeStore) Image(_ context.Context, _ corpus.ImageKind, filename string) ([]byte, error) {
	if s.missing[filename] {
		return nil, fmt.Errorf("%w: %q", corpus.ErrImageNotFound, filename)
	}
	return []byte("img:" + filename), nil
}

// fakeJudge rules by caption. Captions absent from either map are accepted.
type fakeJudge struct {
	rejected map[string]bool
	errs     map[string]error

	mu    sync.Mutex
	calls int
}

func (j *fakeJudge) Judge(_ context.Context, req *judge.Request) (*judge.Verdict, error) {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()

	if err := j.errs[req.Caption]; err != nil {
		return nil, err
	}
	if j.rejected[req.Caption] {
		return &judge.Verdict{Decision: judge.DecisionRejected, Reasoning: "mismatch"}, nil
	}
	return &judge.Verdict{Decision: judge.DecisionAccepted, Reasoning: "match"}, nil
}

func (j *fakeJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

func testPairs(n int) []corpus.Pair {
	pairs := make([]corpus.Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, corpus.Pair{
			ID:          fmt.Sprintf("p%d", i),
			Text:        fmt.Sprintf("text %d", i),
			Hypothesis:  fmt.Sprintf("hypo %d", i),
			Adversarial: fmt.Sprintf("adv %d", i),
			HypoFile:    fmt.Sprintf("h%d.jpg", i),
			AdvFile:     fmt.Sprintf("a%d.jpg", i),
			Category:    "animal",
		})
	}
	return pairs
}

func readDetailed(t *testing.T, path string) []detailedRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening detailed results: %v", err)
	}
	defer f.Close()

	var records []detailedRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec detailedRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshaling detailed line: %v", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return records
}

func readAccepted(t *testing.T, path string) []labelstudio.Task {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading accepted export: %v", err)
	}
	var tasks []labelstudio.Task
	if err := json.Unmarshal(content, &tasks); err != nil {
		t.Fatalf("unmarshaling accepted export: %v", err)
	}
	return tasks
}

func TestRunInvalidRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{{
		name:  "negative start",
		start: -1,
		end:   5,
	}, {
		name:  "end before start",
		start: 3,
		end:   1,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{pairs: testPairs(5)}
			jdg := &fakeJudge{}
			r := &Runner{Store: store, Judge: jdg, Category: "animal", OutputDir: t.TempDir()}

			_, err := r.Run(context.Background(), tt.start, tt.end)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("Run() error = %v, wanted ErrInvalidRange", err)
			}
			if store.pairCalls != 0 {
				t.Errorf("store queried %d times before range validation", store.pairCalls)
			}
			if jdg.callCount() != 0 {
				t.Errorf("judge called %d times for invalid range", jdg.callCount())
			}
		})
	}
}

func TestRunEmptyWindow(t *testing.T) {
	dir := t.TempDir()
	jdg := &fakeJudge{}
	r := &Runner{Store: &fakeStore{pairs: testPairs(5)}, Judge: jdg, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("Total = %d, wanted 0", summary.Total)
	}
	if jdg.callCount() != 0 {
		t.Errorf("judge called %d times for empty window", jdg.callCount())
	}

	if recs := readDetailed(t, detailedPath(dir, 2, 2)); len(recs) != 0 {
		t.Errorf("detailed stream has %d records, wanted 0", len(recs))
	}
	if tasks := readAccepted(t, acceptedPath(dir, "animal", 2, 2)); len(tasks) != 0 {
		t.Errorf("accepted export has %d tasks, wanted 0", len(tasks))
	}
}

func TestRunAllAccepted(t *testing.T) {
	dir := t.TempDir()
	jdg := &fakeJudge{}
	r := &Runner{Store: &fakeStore{pairs: testPairs(3)}, Judge: jdg, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	expected := &Summary{
		Total:        3,
		HypoAccepted: 3,
		AdvAccepted:  3,
		BothAccepted: 3,
	}
	if diff := cmp.Diff(expected, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if jdg.callCount() != 6 {
		t.Errorf("judge called %d times, wanted 6", jdg.callCount())
	}

	recs := readDetailed(t, detailedPath(dir, 0, 3))
	if len(recs) != 3 {
		t.Fatalf("detailed stream has %d records, wanted 3", len(recs))
	}
	for i, rec := range recs {
		if rec.RecordID != fmt.Sprintf("p%d", i) || rec.Index != i {
			t.Errorf("record %d = %q at index %d, out of corpus order", i, rec.RecordID, rec.Index)
		}
		if !rec.BothAccepted {
			t.Errorf("record %q both_accepted = false", rec.RecordID)
		}
	}

	tasks := readAccepted(t, acceptedPath(dir, "animal", 0, 3))
	if len(tasks) != 3 {
		t.Fatalf("accepted export has %d tasks, wanted 3", len(tasks))
	}
	for i, task := range tasks {
		if task.Data.ID != fmt.Sprintf("p%d", i) {
			t.Errorf("task %d = %q, out of corpus order", i, task.Data.ID)
		}
		if task.Meta.HypoReasoning != "match" || task.Meta.AdvReasoning != "match" {
			t.Errorf("task %q missing reasoning: %+v", task.Data.ID, task.Meta)
		}
	}
}

func TestRunRejectedSideExcluded(t *testing.T) {
	dir := t.TempDir()
	jdg := &fakeJudge{rejected: map[string]bool{"adv 1": true}}
	r := &Runner{Store: &fakeStore{pairs: testPairs(3)}, Judge: jdg, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.BothAccepted != 2 || summary.AdvRejected != 1 {
		t.Errorf("summary = %+v, wanted 2 both accepted and 1 adversarial reject", summary)
	}

	recs := readDetailed(t, detailedPath(dir, 0, 3))
	if len(recs) != 3 {
		t.Fatalf("detailed stream has %d records, wanted 3", len(recs))
	}
	if recs[1].BothAccepted || recs[1].AdversarialDecision != string(judge.DecisionRejected) {
		t.Errorf("record p1 = %+v, wanted adversarial reject", recs[1])
	}

	tasks := readAccepted(t, acceptedPath(dir, "animal", 0, 3))
	if len(tasks) != 2 {
		t.Fatalf("accepted export has %d tasks, wanted 2", len(tasks))
	}
	for _, task := range tasks {
		if task.Data.ID == "p1" {
			t.Error("rejected pair p1 leaked into accepted export")
		}
	}
}

func TestRunMissingImage(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{pairs: testPairs(2), missing: map[string]bool{"h0.jpg": true}}
	jdg := &fakeJudge{}
	r := &Runner{Store: store, Judge: jdg, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.MissingImages != 1 || summary.BothAccepted != 1 {
		t.Errorf("summary = %+v, wanted 1 missing and 1 both accepted", summary)
	}
	// The missing side never reaches the judge: p0 adversarial plus both
	// sides of p1.
	if jdg.callCount() != 3 {
		t.Errorf("judge called %d times, wanted 3", jdg.callCount())
	}

	recs := readDetailed(t, detailedPath(dir, 0, 2))
	if recs[0].HypothesisDecision != string(judge.DecisionMissing) {
		t.Errorf("p0 hypothesis decision = %q, wanted missing", recs[0].HypothesisDecision)
	}
	if recs[0].BothAccepted {
		t.Error("p0 both_accepted = true with a missing image")
	}
}

func TestRunRecoverableJudgeFailure(t *testing.T) {
	dir := t.TempDir()
	jdg := &fakeJudge{errs: map[string]error{
		"hypo 0": fmt.Errorf("%w: model overloaded", judge.ErrUnavailable),
		"adv 1":  fmt.Errorf("%w: no decision found", judge.ErrMalformedResponse),
	}}
	r := &Runner{Store: &fakeStore{pairs: testPairs(3)}, Judge: jdg, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 3 || summary.JudgeErrors != 2 || summary.BothAccepted != 1 {
		t.Errorf("summary = %+v, wanted 3 total, 2 judge errors, 1 both accepted", summary)
	}

	recs := readDetailed(t, detailedPath(dir, 0, 3))
	if recs[0].HypothesisDecision != string(judge.DecisionError) {
		t.Errorf("p0 hypothesis decision = %q, wanted error", recs[0].HypothesisDecision)
	}
	if !strings.Contains(recs[0].HypothesisReasoning, "model overloaded") {
		t.Errorf("p0 hypothesis reasoning = %q, wanted the failure detail", recs[0].HypothesisReasoning)
	}
	if recs[1].AdversarialDecision != string(judge.DecisionError) {
		t.Errorf("p1 adversarial decision = %q, wanted error", recs[1].AdversarialDecision)
	}

	tasks := readAccepted(t, acceptedPath(dir, "animal", 0, 3))
	if len(tasks) != 1 || tasks[0].Data.ID != "p2" {
		t.Errorf("accepted export = %d tasks, wanted only p2", len(tasks))
	}
}

func TestRunFatalJudgeFailure(t *testing.T) {
	jdg := &fakeJudge{errs: map[string]error{
		"hypo 1": errors.New("permission denied"),
	}}
	r := &Runner{Store: &fakeStore{pairs: testPairs(3)}, Judge: jdg, Category: "animal", OutputDir: t.TempDir()}

	_, err := r.Run(context.Background(), 0, 3)
	if err == nil {
		t.Fatal("Run() expected error for fatal judge failure")
	}
	if !strings.Contains(err.Error(), `"p1"`) {
		t.Errorf("Run() error = %q, wanted the failing pair named", err)
	}
}

func TestRunClampsEnd(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Store: &fakeStore{pairs: testPairs(3)}, Judge: &fakeJudge{}, Category: "animal", OutputDir: dir}

	summary, err := r.Run(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 2 {
		t.Errorf("Total = %d, wanted 2", summary.Total)
	}

	recs := readDetailed(t, detailedPath(dir, 1, 3))
	if len(recs) != 2 || recs[0].Index != 1 || recs[1].Index != 2 {
		t.Errorf("detailed stream = %+v, wanted indices 1 and 2", recs)
	}
}

func TestRunCheckpoints(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		Store:           &fakeStore{pairs: testPairs(5)},
		Judge:           &fakeJudge{},
		Category:        "animal",
		OutputDir:       dir,
		CheckpointEvery: 2,
	}

	if _, err := r.Run(context.Background(), 0, 5); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, n := range []int{2, 4} {
		recs := readDetailed(t, detailedCheckpointPath(dir, 0, n))
		if len(recs) != n {
			t.Errorf("checkpoint %d has %d records, wanted %d", n, len(recs), n)
		}
		tasks := readAccepted(t, acceptedCheckpointPath(dir, "animal", 0, n))
		if len(tasks) != n {
			t.Errorf("accepted checkpoint %d has %d tasks, wanted %d", n, len(tasks), n)
		}
	}
	// 5 is not a multiple of 2, so no checkpoint at the end of the run.
	if _, err := os.Stat(detailedCheckpointPath(dir, 0, 5)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected checkpoint at 5: %v", err)
	}
}

func TestRunCheckpointsCountFromStart(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		Store:           &fakeStore{pairs: testPairs(8)},
		Judge:           &fakeJudge{},
		Category:        "animal",
		OutputDir:       dir,
		CheckpointEvery: 2,
	}

	if _, err := r.Run(context.Background(), 4, 8); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Checkpoint names count records screened within the window, so a run
	// starting at 4 still writes checkpoints 2 and 4.
	for _, count := range []int{2, 4} {
		recs := readDetailed(t, detailedCheckpointPath(dir, 4, count))
		if len(recs) != count {
			t.Errorf("checkpoint %d has %d records, wanted %d", count, len(recs), count)
		}
		if recs[0].Index != 4 {
			t.Errorf("checkpoint %d starts at index %d, wanted 4", count, recs[0].Index)
		}
	}
	if _, err := os.Stat(detailedCheckpointPath(dir, 4, 6)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected checkpoint at absolute index 6: %v", err)
	}
}

func TestRunCheckpointsDisabled(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		Store:           &fakeStore{pairs: testPairs(4)},
		Judge:           &fakeJudge{},
		Category:        "animal",
		OutputDir:       dir,
		CheckpointEvery: -1,
	}

	if _, err := r.Run(context.Background(), 0, 4); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "checkpoint") {
			t.Errorf("checkpoint %q written with checkpoints disabled", entry.Name())
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	pairs := testPairs(4)
	jdg := &fakeJudge{rejected: map[string]bool{"hypo 2": true}}

	run := func(dir string) (detailed, accepted []byte) {
		t.Helper()
		r := &Runner{Store: &fakeStore{pairs: pairs}, Judge: jdg, Category: "animal", OutputDir: dir}
		if _, err := r.Run(context.Background(), 0, 4); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		detailed, err := os.ReadFile(detailedPath(dir, 0, 4))
		if err != nil {
			t.Fatal(err)
		}
		accepted, err = os.ReadFile(acceptedPath(dir, "animal", 0, 4))
		if err != nil {
			t.Fatal(err)
		}
		return detailed, accepted
	}

	d1, a1 := run(filepath.Join(t.TempDir(), "one"))
	d2, a2 := run(filepath.Join(t.TempDir(), "two"))

	if diff := cmp.Diff(string(d1), string(d2)); diff != "" {
		t.Errorf("detailed streams differ between identical runs:\n%s", diff)
	}
	if diff := cmp.Diff(string(a1), string(a2)); diff != "" {
		t.Errorf("accepted exports differ between identical runs:\n%s", diff)
	}
}
