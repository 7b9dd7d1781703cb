package orchestrator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLabelMismatch means the classifier and the label catalog disagree on
	// the number of labels. It is a configuration error, never skipped.
	ErrLabelMismatch = errors.New("score vector length does not match label catalog")

	ErrInvalidWindow = errors.New("invalid window parameters")
)

// Frame is one fixed-length slice of a waveform, zero-padded when it runs
// past the end of the signal.
type Frame struct {
	Start   float64 // sec
	End     float64 // sec, nominal: Start + window length
	Samples []float32
}

// ScoredWindow is a frame's time span with the classifier's score vector.
type ScoredWindow struct {
	Start, End float64
	Scores     []float32
}

// InferenceError is a failed classifier call. The whole file is abandoned.
type InferenceError struct {
	File  string
	Batch int
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s batch %d: %v", e.File, e.Batch, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path    string
	Err     error
	Windows int
	Rows    int
	Outputs []string
	Elapsed time.Duration
}

func (r FileResult) OK() bool { return r.Err == nil }

// Summary aggregates the results of a run.
type Summary struct {
	Processed int
	Failed    int
	Failures  []FileResult
	Elapsed   time.Duration
}

func (s *Summary) Add(r FileResult) {
	s.Processed++
	if r.Err != nil {
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
}

// Err is nil when every file succeeded.
func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	errs := make([]error, 0, len(s.Failures))
	for _, f := range s.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return fmt.Errorf("%d of %d files failed: %w", s.Failed, s.Processed, errors.Join(errs...))
}
