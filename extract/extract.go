// Package extract cuts detected segments out of their source recordings and
// writes them as labeled WAV clips, one directory per species.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NINAnor/birdnetfs/audio"
	"github.com/NINAnor/birdnetfs/detection"
	"github.com/NINAnor/birdnetfs/metrics"
	"github.com/NINAnor/birdnetfs/segments"
	"github.com/NINAnor/birdnetfs/storage"
)

// WriteError is a clip that could not be written. Only that segment is lost.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write clip %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ClipPath is the deterministic location of a segment's clip:
// <root>/<species>/start=<s>_end=<e>_conf=<c>_file=<stem>.wav
func ClipPath(root string, s segments.Segment) string {
	base := path.Base(s.Audio)
	stem := strings.TrimSuffix(base, path.Ext(base))
	name := fmt.Sprintf("start=%s_end=%s_conf=%.3f_file=%s.wav",
		detection.FormatSeconds(s.Start), detection.FormatSeconds(s.End), s.Confidence, stem)
	return path.Join(root, strings.ReplaceAll(s.Species, "/", "_"), name)
}

// Span returns the sample range of s in a signal of n samples at rate,
// padded on both sides so the clip reaches clipLen seconds where the
// signal allows. An empty range is returned as end <= start.
func Span(s segments.Segment, rate, n int, clipLen float64) (start, end int) {
	start = int(s.Start * float64(rate))
	end = int(s.End * float64(rate))
	diff := int(clipLen*float64(rate)) - (end - start)
	pad := diff / 2
	if diff < 0 && diff%2 != 0 {
		pad-- // floor
	}
	start = max(0, start-pad)
	end = min(n, end+pad)
	return start, end
}

// Extractor writes clips to a store.
type Extractor struct {
	Store      storage.FileStore
	Root       string
	ClipLength float64
	ClipRate   int
	Log        logrus.FieldLogger
}

// Extract writes one segment's clip from wave. written is false when the
// padded span is empty, which is not an error.
func (x *Extractor) Extract(ctx context.Context, wave *audio.Waveform, s segments.Segment) (clip string, written bool, err error) {
	start, end := Span(s, wave.Rate, wave.Len(), x.ClipLength)
	if end <= start {
		return "", false, nil
	}
	clip = ClipPath(x.Root, s)

	out := &audio.Waveform{Samples: wave.Samples[start:end], Rate: wave.Rate}
	if x.ClipRate > 0 && x.ClipRate != wave.Rate {
		samples, err := audio.Resample(out.Samples, wave.Rate, x.ClipRate)
		if err != nil {
			return clip, false, &WriteError{Path: clip, Err: err}
		}
		out = &audio.Waveform{Samples: samples, Rate: x.ClipRate}
	}
	data, err := audio.WAVBytes(out)
	if err != nil {
		return clip, false, &WriteError{Path: clip, Err: err}
	}
	if err := storage.WriteFile(ctx, x.Store, clip, data); err != nil {
		return clip, false, &WriteError{Path: clip, Err: err}
	}
	return clip, true, nil
}

// FileResult is the outcome of extracting every segment of one recording.
type FileResult struct {
	Audio   string
	Written int
	Skipped int
	Failed  int
	Err     error
	Elapsed time.Duration
}

// ExtractFile decodes audioPath from src once and writes all of its
// segments. A decode failure fails the file; a failed clip is logged and
// the remaining segments are still written.
func (x *Extractor) ExtractFile(ctx context.Context, src storage.FileStore, audioPath string, segs []segments.Segment) FileResult {
	began := time.Now()
	res := FileResult{Audio: audioPath}
	log := x.Log.WithField("file", audioPath)
	defer func() {
		res.Elapsed = time.Since(began)
		metrics.RecordFile("extract", res.Err, res.Elapsed.Seconds())
	}()

	wave, err := x.load(ctx, src, audioPath)
	if err != nil {
		res.Err = err
		log.WithError(err).Error("cannot decode source")
		return res
	}

	var errs []error
	for _, s := range segs {
		clip, written, err := x.Extract(ctx, wave, s)
		switch {
		case err != nil:
			res.Failed++
			errs = append(errs, err)
			metrics.RecordSegment("failed")
			log.WithError(err).Error("segment not written")
		case !written:
			res.Skipped++
			metrics.RecordSegment("skipped")
			log.WithFields(logrus.Fields{"start": s.Start, "end": s.End}).Debug("empty span, skipped")
		default:
			res.Written++
			metrics.RecordSegment("written")
			log.WithField("clip", clip).Debug("clip written")
		}
	}
	res.Err = errors.Join(errs...)
	log.WithFields(logrus.Fields{"written": res.Written, "skipped": res.Skipped, "failed": res.Failed}).Info("segments extracted")
	return res
}

func (x *Extractor) load(ctx context.Context, src storage.FileStore, audioPath string) (*audio.Waveform, error) {
	local, cleanup, err := storage.Localize(ctx, src, audioPath)
	if err != nil {
		return nil, &audio.DecodeError{Path: audioPath, Err: err}
	}
	defer cleanup()

	wave, err := audio.Load(local, 0)
	if err != nil {
		var de *audio.DecodeError
		if errors.As(err, &de) {
			de.Path = audioPath
		}
		return nil, err
	}
	return wave, nil
}
