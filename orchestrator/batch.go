package orchestrator

import (
	"context"
	"fmt"
	"iter"

	"github.com/NINAnor/birdnetfs/metrics"
)

// Classifier scores a batch of frames, one vector per frame in catalog
// label order.
type Classifier interface {
	Predict(ctx context.Context, frames [][]float32) ([][]float32, error)
}

// Driver groups frames into batches of Size and calls the classifier once
// per batch.
type Driver struct {
	Classifier Classifier
	Size       int
	File       string
}

// Run feeds every batch's scored windows to emit in frame order. A failed
// classifier call is returned as *InferenceError; an error from emit is
// returned as is.
func (d Driver) Run(ctx context.Context, frames iter.Seq[Frame], emit func([]ScoredWindow) error) error {
	size := max(d.Size, 1)
	batch := make([]Frame, 0, size)
	n := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n++
		input := make([][]float32, len(batch))
		for i, f := range batch {
			input[i] = f.Samples
		}
		scores, err := d.Classifier.Predict(ctx, input)
		metrics.RecordBatch()
		if err != nil {
			return &InferenceError{File: d.File, Batch: n, Err: err}
		}
		if len(scores) != len(batch) {
			return &InferenceError{File: d.File, Batch: n, Err: errScoreCount(len(scores), len(batch))}
		}
		out := make([]ScoredWindow, len(batch))
		for i, f := range batch {
			out[i] = ScoredWindow{Start: f.Start, End: f.End, Scores: scores[i]}
		}
		batch = batch[:0]
		return emit(out)
	}

	for f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch = append(batch, f)
		if len(batch) == size {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func errScoreCount(got, want int) error {
	return fmt.Errorf("classifier returned %d score vectors for %d frames", got, want)
}
