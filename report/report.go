// Package report renders a detection table into the result file formats
// understood by Raven, Audacity, R, Kaleidoscope and plain CSV tooling.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/NINAnor/birdnetfs/config"
	"github.com/NINAnor/birdnetfs/detection"
)

type Format string

const (
	Table        Format = "table"
	Audacity     Format = "audacity"
	R            Format = "r"
	Kaleidoscope Format = "kaleidoscope"
	CSV          Format = "csv"
)

var ErrUnknownFormat = errors.New("report: unknown result type")

var suffixes = map[Format]string{
	Table:        ".BirdNET.selection.table.txt",
	Audacity:     ".BirdNET.results.txt",
	R:            ".BirdNET.results.r.csv",
	Kaleidoscope: ".BirdNET.results.kaleidoscope.csv",
	CSV:          ".BirdNET.results.csv",
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := suffixes[f]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// ParseFormats parses RESULT_TYPES, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// FileName is the result file name for an audio stem, e.g.
// "rec.BirdNET.selection.table.txt".
func FileName(stem string, f Format) string {
	return stem + suffixes[f]
}

// Catalog is the label lookup the formats need.
type Catalog interface {
	Included(label string) bool
	Translated(label string) string
	CommonName(label string) string
	Names(label string) (scientific, common string)
	Code(label string) string
}

// Context carries the per-file values printed alongside detections.
type Context struct {
	AudioPath     string
	SampleRate    int
	MinConfidence float64

	SigFMin, SigFMax           float64
	BandpassFMin, BandpassFMax float64

	// OutputConfigured enables the placeholder row of empty tables.
	OutputConfigured bool

	Latitude, Longitude float64
	Week                int
	Overlap             float64
	Sensitivity         float64
	SpeciesList         string
	Model               string
}

func NewContext(c *config.Root, audioPath string) Context {
	return Context{
		AudioPath:        audioPath,
		SampleRate:       c.SampleRate,
		MinConfidence:    c.MinConfidence,
		SigFMin:          c.Signal.FMin,
		SigFMax:          c.Signal.FMax,
		BandpassFMin:     c.Signal.BandpassLo,
		BandpassFMax:     c.Signal.BandpassHi,
		OutputConfigured: c.OutputPath != "",
		Latitude:         c.Location.Latitude,
		Longitude:        c.Location.Longitude,
		Week:             c.Location.Week,
		Overlap:          c.Signal.Overlap,
		Sensitivity:      c.Sensitivity(),
		SpeciesList:      c.Labels.SpeciesListFile,
		Model:            c.Model.Name,
	}
}

// FreqBounds is the (low, high) band of the selection table.
func (c Context) FreqBounds() (low, high float64) {
	high = min(float64(c.SampleRate)/2, c.SigFMax, c.BandpassFMax)
	low = max(c.SigFMin, c.BandpassFMin)
	return low, high
}

// keep compares at the classifier's float32 precision, so a score equal to
// MinConfidence is dropped.
func (c Context) keep(cat Catalog, p detection.Prediction) bool {
	return float32(p.Confidence) > float32(c.MinConfidence) && cat.Included(p.Label)
}

// Render writes tbl in format f to w and returns the number of data rows.
// Windows are emitted in chronological order.
func Render(w io.Writer, f Format, tbl *detection.Table, cat Catalog, c Context) (int, error) {
	windows := tbl.Chronological()
	switch f {
	case Table:
		return renderTable(w, windows, cat, c)
	case Audacity:
		return renderAudacity(w, windows, cat, c)
	case R:
		return renderR(w, windows, cat, c)
	case Kaleidoscope:
		return renderKaleidoscope(w, windows, cat, c)
	case CSV:
		return renderCSV(w, windows, cat, c)
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
}
