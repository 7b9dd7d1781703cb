// Package audio decodes recordings into mono waveforms at the rate the
// classifier expects and encodes clips back to 16-bit PCM WAV.
package audio

import "fmt"

// Waveform is a mono signal. Samples are nominally in [-1, 1].
type Waveform struct {
	Samples []float32
	Rate    int
}

func (w *Waveform) Len() int { return len(w.Samples) }

// Seconds is the duration in seconds.
func (w *Waveform) Seconds() float64 {
	if w.Rate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.Rate)
}

// DecodeError means an audio file could not be read or decoded. It affects
// only that file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
