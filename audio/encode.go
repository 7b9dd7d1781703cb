package audio

import (
	"errors"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// EncodeWAV writes w as 16-bit mono PCM. Samples outside [-1, 1] are clipped.
func EncodeWAV(dst io.WriteSeeker, w *Waveform) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(w.Rate),
		NumChannels: 1,
		Precision:   2,
	}
	return wav.Encode(dst, &sliceStreamer{samples: w.Samples}, format)
}

// WAVBytes is EncodeWAV into memory.
func WAVBytes(w *Waveform) ([]byte, error) {
	var buf seekBuffer
	if err := EncodeWAV(&buf, w); err != nil {
		return nil, err
	}
	return buf.data, nil
}

type sliceStreamer struct {
	samples []float32
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for n < len(out) && s.pos < len(s.samples) {
		v := float64(s.samples[s.pos])
		v = max(-1, min(1, v))
		out[n] = [2]float64{v, v}
		n++
		s.pos++
	}
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch the header sizes.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("seekBuffer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("seekBuffer: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
