/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"chainguard.dev/pairscreen/corpus"
	"chainguard.dev/pairscreen/judge"
	"chainguard.dev/pairscreen/labelstudio"
	"chainguard.dev/pairscreen/metrics"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidRange indicates a nonsensical index window. It is returned
// before any image is fetched or judge call made.
var ErrInvalidRange = errors.New("invalid index range")

// DefaultCheckpointEvery is how often intermediate snapshots are written.
const DefaultCheckpointEvery = 10

// Runner screens a window of a pair corpus through a judge.
type Runner struct {
	// Store provides the pairs and their images.
	Store corpus.Store

	// Judge rules on each caption/image pairing.
	Judge judge.Interface

	// Category names the corpus, and tags the accepted export filename.
	Category string

	// OutputDir receives the detailed stream, the accepted export, and
	// checkpoints. Created if absent.
	OutputDir string

	// CheckpointEvery is the snapshot interval in pairs. Zero means
	// DefaultCheckpointEvery; negative disables checkpoints.
	CheckpointEvery int

	// Timeout bounds each judge call. Zero means no per-call bound.
	Timeout time.Duration
}

// Run screens pairs [start, end) and returns the run summary. end past the
// corpus is clamped; start == end produces empty outputs without touching
// the judge. Pairs are screened sequentially in corpus order so output is
// deterministic; within a pair the two images are judged concurrently.
func (r *Runner) Run(ctx context.Context, start, end int) (*Summary, error) {
	log := clog.FromContext(ctx)

	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, start, end)
	}

	pairs, err := r.Store.Pairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	if end > len(pairs) {
		end = len(pairs)
	}
	if start > end {
		start = end
	}

	checkpointEvery := r.CheckpointEvery
	if checkpointEvery == 0 {
		checkpointEvery = DefaultCheckpointEvery
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	dw, err := newDetailedWriter(detailedPath(r.OutputDir, start, end))
	if err != nil {
		return nil, err
	}
	defer dw.Close()

	screening := metrics.NewScreening("pairscreen.filter")

	summary := &Summary{}
	var results []*PairResult
	var tasks []labelstudio.Task

	window := pairs[start:end]
	log.With("category", r.Category).
		With("start", start).
		With("end", end).
		With("pairs", len(window)).
		Info("Screening pairs")

	for i := range window {
		pair := window[i]
		res := &PairResult{Pair: pair, Index: start + i}
		plog := log.With("record_id", pair.ID).With("index", res.Index)

		// The two sides are independent and AND is commutative, so judge
		// them concurrently.
		var hypoImg, advImg []byte
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			res.Hypothesis, hypoImg, err = r.screenSide(gctx, &pair, corpus.Hypothesis)
			return err
		})
		g.Go(func() error {
			var err error
			res.Adversarial, advImg, err = r.screenSide(gctx, &pair, corpus.Adversarial)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("screening pair %q: %w", pair.ID, err)
		}

		results = append(results, res)
		summary.add(res)
		screening.RecordVerdict(ctx, r.Category, string(corpus.Hypothesis), string(res.Hypothesis.Decision))
		screening.RecordVerdict(ctx, r.Category, string(corpus.Adversarial), string(res.Adversarial.Decision))
		screening.RecordPair(ctx, r.Category, res.BothAccepted())

		if err := dw.Write(res); err != nil {
			return nil, err
		}

		if res.BothAccepted() {
			tasks = append(tasks, labelstudio.NewAcceptedTask(&pair,
				res.Hypothesis.Reasoning, res.Adversarial.Reasoning,
				hypoImg, advImg))
		}

		if checkpointEvery > 0 && (i+1)%checkpointEvery == 0 {
			// Checkpoint names carry the count of records screened so far,
			// not the absolute corpus index.
			count := i + 1
			if err := writeDetailedSnapshot(detailedCheckpointPath(r.OutputDir, start, count), results); err != nil {
				return nil, err
			}
			if err := labelstudio.WriteTasks(acceptedCheckpointPath(r.OutputDir, r.Category, start, count), tasks); err != nil {
				return nil, err
			}
			plog.With("checkpoint", count).Info("Wrote checkpoint")
		}
	}

	if err := labelstudio.WriteTasks(acceptedPath(r.OutputDir, r.Category, start, end), tasks); err != nil {
		return nil, err
	}

	log.With("total", summary.Total).
		With("both_accepted", summary.BothAccepted).
		With("judge_errors", summary.JudgeErrors).
		With("missing_images", summary.MissingImages).
		Info("Screening complete")
	return summary, nil
}

// screenSide fetches and judges one of a pair's images. A missing image
// or a recoverable judge failure becomes an explicit verdict so the pair
// stays in the audit stream; any other error aborts the run.
func (r *Runner) screenSide(ctx context.Context, pair *corpus.Pair, kind corpus.ImageKind) (*judge.Verdict, []byte, error) {
	log := clog.FromContext(ctx)
	filename := pair.Filename(kind)

	img, err := r.Store.Image(ctx, kind, filename)
	if errors.Is(err, corpus.ErrImageNotFound) {
		log.With("kind", kind).With("filename", filename).Warn("Image not found")
		return &judge.Verdict{
			Decision:  judge.DecisionMissing,
			Reasoning: "image not found",
		}, nil, nil
	}
	if err != nil {
		log.With("kind", kind).With("filename", filename).With("error", err).Warn("Failed to fetch image")
		return &judge.Verdict{
			Decision:  judge.DecisionError,
			Reasoning: fmt.Sprintf("failed to fetch image: %v", err),
		}, nil, nil
	}

	jctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	verdict, err := r.Judge.Judge(jctx, &judge.Request{
		Text:      pair.Text,
		Caption:   pair.Caption(kind),
		Kind:      judge.ImageKind(kind),
		ImageMIME: corpus.MIMEType(filename),
		Image:     img,
	})
	switch {
	case errors.Is(err, judge.ErrUnavailable), errors.Is(err, judge.ErrMalformedResponse):
		log.With("kind", kind).With("error", err).Warn("Recoverable judge failure, recording error verdict")
		return &judge.Verdict{
			Decision:  judge.DecisionError,
			Reasoning: err.Error(),
		}, img, nil
	case err != nil:
		return nil, nil, err
	}
	return verdict, img, nil
}
