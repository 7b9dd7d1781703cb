package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NINAnor/birdnetfs/segments"
	"github.com/NINAnor/birdnetfs/storage"
)

// Source lists the sampled segments per audio file. *db.DB implements it.
type Source interface {
	AudioFiles(ctx context.Context) ([]string, error)
	SegmentsForAudio(ctx context.Context, audio string) ([]segments.Segment, error)
}

// Summary aggregates an extraction run.
type Summary struct {
	Files    int
	Failed   int
	Written  int
	Skipped  int
	Failures []FileResult
	Elapsed  time.Duration
}

func (s *Summary) Add(r FileResult) {
	s.Files++
	s.Written += r.Written
	s.Skipped += r.Skipped
	if r.Err != nil {
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
}

func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	errs := make([]error, 0, len(s.Failures))
	for _, f := range s.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Audio, f.Err))
	}
	return fmt.Errorf("%d of %d files failed: %w", s.Failed, s.Files, errors.Join(errs...))
}

// Run extracts the given audio files (all files in the source when none
// are given) with at most workers files in flight. Errors listing the
// source abort the run; per-file failures end up in the summary, as do
// files left unstarted when ctx is cancelled.
func (x *Extractor) Run(ctx context.Context, src storage.FileStore, list Source, files []string, workers int) (Summary, error) {
	began := time.Now()
	if len(files) == 0 {
		var err error
		if files, err = list.AudioFiles(ctx); err != nil {
			return Summary{}, fmt.Errorf("list audio files: %w", err)
		}
	}

	results := make([]FileResult, len(files))
	done := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, audioPath := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			segs, err := list.SegmentsForAudio(gctx, audioPath)
			if err != nil {
				return fmt.Errorf("segments for %s: %w", audioPath, err)
			}
			results[i], done[i] = x.ExtractFile(gctx, src, audioPath, segs), true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var s Summary
	for i, r := range results {
		if !done[i] {
			err := context.Cause(ctx)
			if err == nil {
				err = context.Canceled
			}
			r = FileResult{Audio: files[i], Err: fmt.Errorf("not started: %w", err)}
		}
		s.Add(r)
	}
	s.Elapsed = time.Since(began)
	return s, nil
}
