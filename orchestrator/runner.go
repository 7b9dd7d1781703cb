package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NINAnor/birdnetfs/storage"
)

// Files lists the audio files under INPUT_PATH in lexical order.
func (p *Pipeline) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := storage.WalkExt(ctx, p.store, p.cfg.InputPath, p.cfg.AudioExtensions, func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, err
}

// AnalyzeAll analyzes paths with at most workers files in flight. A failed
// file never stops its siblings; only ctx cancellation does, and files not
// started by then are counted as failed with the context's error.
func (p *Pipeline) AnalyzeAll(ctx context.Context, paths []string, workers int) Summary {
	began := time.Now()
	results := make([]FileResult, len(paths))
	done := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i], done[i] = p.AnalyzeFile(gctx, path), true
			return nil
		})
	}
	g.Wait()

	var s Summary
	for i, r := range results {
		if !done[i] {
			r = FileResult{Path: paths[i], Err: fmt.Errorf("not started: %w", interrupted(ctx))}
		}
		s.Add(r)
	}
	s.Elapsed = time.Since(began)
	return s
}

// interrupted is the reason work stopped early.
func interrupted(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return context.Canceled
}
