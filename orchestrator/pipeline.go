package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NINAnor/birdnetfs/audio"
	"github.com/NINAnor/birdnetfs/catalog"
	"github.com/NINAnor/birdnetfs/clients"
	cfg "github.com/NINAnor/birdnetfs/config"
	"github.com/NINAnor/birdnetfs/detection"
	"github.com/NINAnor/birdnetfs/metrics"
	"github.com/NINAnor/birdnetfs/report"
	"github.com/NINAnor/birdnetfs/storage"
)

// Pipeline analyzes one recording at a time: decode, window, classify in
// batches, rank and write the configured reports. It holds no per-file state
// and can be shared by concurrent workers.
type Pipeline struct {
	cfg        *cfg.Root
	store      storage.Store
	catalog    *catalog.Catalog
	classifier Classifier
	formats    []report.Format
	log        logrus.FieldLogger
	progress   io.Writer
	decode     func(path string, rate int) (*audio.Waveform, error)
}

type Option func(*Pipeline)

// WithClassifier replaces the HTTP model client.
func WithClassifier(c Classifier) Option { return func(p *Pipeline) { p.classifier = c } }

// WithProgress sends the "Analyzing"/"Finished" lines to w instead of stdout.
func WithProgress(w io.Writer) Option { return func(p *Pipeline) { p.progress = w } }

func NewPipeline(c *cfg.Root, store storage.Store, cat *catalog.Catalog, log logrus.FieldLogger, opts ...Option) (*Pipeline, error) {
	formats, err := report.ParseFormats(c.ResultTypes)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:      c,
		store:    store,
		catalog:  cat,
		formats:  formats,
		log:      log,
		progress: os.Stdout,
		decode:   audio.Load,
	}
	for _, o := range opts {
		o(p)
	}
	if p.classifier == nil {
		p.classifier = clients.NewClassifier(clients.NewHTTP(c.Model.Timeout), clients.ClassifierConfig{
			URL:         c.Model.URL,
			Model:       c.Model.Name,
			Codec:       c.Model.Codec,
			SampleRate:  c.SampleRate,
			Sensitivity: c.Location.SigmoidSensitivity,
		})
	}
	return p, nil
}

// AnalyzeFile runs the whole analysis for the recording at path. Failures
// are reported in the result, never panicked or logged twice.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) FileResult {
	began := time.Now()
	res := FileResult{Path: path}
	log := p.log.WithField("file", path)

	fmt.Fprintf(p.progress, "Analyzing %s\n", path)
	tbl, err := p.detect(ctx, path)
	if err == nil {
		res.Windows = tbl.Len()
		res.Outputs, res.Rows, err = p.persist(ctx, path, tbl)
	}
	res.Err = err
	res.Elapsed = time.Since(began)
	metrics.RecordFile("analyze", err, res.Elapsed.Seconds())

	if err != nil {
		log.WithError(err).Error("analysis failed")
		return res
	}
	log.WithFields(logrus.Fields{"windows": res.Windows, "rows": res.Rows}).Debug("analysis done")
	fmt.Fprintf(p.progress, "Finished %s in %.2f seconds\n", path, res.Elapsed.Seconds())
	return res
}

// detect produces the detection table for one file.
func (p *Pipeline) detect(ctx context.Context, path string) (*detection.Table, error) {
	local, cleanup, err := storage.Localize(ctx, p.store, path)
	if err != nil {
		return nil, &audio.DecodeError{Path: path, Err: err}
	}
	defer cleanup()

	wave, err := p.decode(local, p.cfg.SampleRate)
	if err != nil {
		var de *audio.DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"file": path, "seconds": wave.Seconds()}).Debug("decoded")

	frames, err := Slice(wave, p.cfg.Signal.Length, p.cfg.Signal.Overlap, p.cfg.Signal.MinLength)
	if err != nil {
		return nil, err
	}

	labels := p.catalog.Labels()
	tbl := detection.NewTable()
	d := Driver{Classifier: p.classifier, Size: p.cfg.BatchSize, File: path}
	err = d.Run(ctx, frames, func(batch []ScoredWindow) error {
		return aggregate(tbl, batch, labels)
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}
