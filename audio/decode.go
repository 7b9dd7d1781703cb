package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is wrapped in a DecodeError for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Extensions lists the container formats Decode understands.
var Extensions = []string{".wav", ".flac", ".mp3", ".ogg"}

const streamChunk = 4096

// Load decodes the file at path and resamples it to rate. Any failure is a
// *DecodeError.
func Load(path string, rate int) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()
	w, err := Decode(f, filepath.Ext(path), rate)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	return w, nil
}

// Decode reads one recording in the container named by ext, mixes it down to
// mono and resamples it to rate.
func Decode(rc io.ReadCloser, ext string, rate int) (*Waveform, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(ext) {
	case ".wav":
		s, format, err = wav.Decode(rc)
	case ".flac":
		s, format, err = flac.Decode(rc)
	case ".mp3":
		s, format, err = mp3.Decode(rc)
	case ".ogg":
		s, format, err = vorbis.Decode(rc)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer s.Close()

	mono := make([]float32, 0, max(s.Len(), 0))
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			mono = append(mono, float32((frame[0]+frame[1])/2))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, &DecodeError{Err: err}
	}

	src := int(format.SampleRate)
	if rate <= 0 || rate == src {
		return &Waveform{Samples: mono, Rate: src}, nil
	}
	out, err := Resample(mono, src, rate)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &Waveform{Samples: out, Rate: rate}, nil
}
