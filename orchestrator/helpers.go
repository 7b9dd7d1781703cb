package orchestrator

import (
	"fmt"
	"iter"

	"github.com/NINAnor/birdnetfs/audio"
	"github.com/NINAnor/birdnetfs/detection"
)

// Slice cuts w into frames of length seconds advancing by length-overlap.
//
// A frame starts at every step offset inside the signal. A frame that runs
// past the end is zero-padded; it is dropped when it holds less than minLen
// seconds of signal, unless it is the only frame. The sequence is lazy and
// can be ranged over more than once.
func Slice(w *audio.Waveform, length, overlap, minLen float64) (iter.Seq[Frame], error) {
	if w.Rate <= 0 || length <= 0 || overlap < 0 || overlap >= length {
		return nil, fmt.Errorf("%w: length=%g overlap=%g rate=%d", ErrInvalidWindow, length, overlap, w.Rate)
	}
	rate := float64(w.Rate)
	size := int(length * rate)
	step := int((length - overlap) * rate)
	minSamples := int(minLen * rate)
	if size <= 0 || step <= 0 {
		return nil, fmt.Errorf("%w: window of %d samples, step %d", ErrInvalidWindow, size, step)
	}

	return func(yield func(Frame) bool) {
		n := len(w.Samples)
		for off := 0; off < n; off += step {
			end := min(off+size, n)
			if end-off < minSamples && off > 0 {
				return
			}
			samples := make([]float32, size)
			copy(samples, w.Samples[off:end])
			start := float64(off) / rate
			if !yield(Frame{Start: start, End: start + length, Samples: samples}) {
				return
			}
		}
	}, nil
}

// aggregate ranks each scored window against labels and adds it to tbl.
func aggregate(tbl *detection.Table, windows []ScoredWindow, labels []string) error {
	for _, sw := range windows {
		if len(sw.Scores) != len(labels) {
			return fmt.Errorf("%w: %d scores, %d labels", ErrLabelMismatch, len(sw.Scores), len(labels))
		}
		w := detection.Window{
			Start:       sw.Start,
			End:         sw.End,
			Predictions: detection.Rank(labels, sw.Scores),
		}
		if err := tbl.Add(w); err != nil {
			return err
		}
	}
	return nil
}
