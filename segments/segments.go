// Package segments turns selection tables back into time-stamped detections
// and samples them per species for clip extraction.
package segments

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Segment is one confirmed detection. Segments are immutable once parsed.
type Segment struct {
	RowID      int64
	Audio      string
	Start      float64
	End        float64
	Species    string
	Confidence float64
}

// ReportParseError means a whole report file was unusable. The corpus scan
// carries on with the next file.
type ReportParseError struct {
	Path string
	Err  error
}

func (e *ReportParseError) Error() string {
	return fmt.Sprintf("parse report %s: %v", e.Path, e.Err)
}

func (e *ReportParseError) Unwrap() error { return e.Err }

// Stem is the base name up to its first '.', so "rec.wav" and
// "rec.BirdNET.selection.table.txt" share the stem "rec".
func Stem(p string) string {
	base := path.Base(p)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Index groups segments by a key: species, or the alternate view by audio
// file.
type Index map[string][]Segment

func BySpecies(segs []Segment) Index {
	ix := Index{}
	for _, s := range segs {
		ix[s.Species] = append(ix[s.Species], s)
	}
	return ix
}

func ByAudio(segs []Segment) Index {
	ix := Index{}
	for _, s := range segs {
		ix[s.Audio] = append(ix[s.Audio], s)
	}
	return ix
}

func (ix Index) Keys() []string {
	keys := make([]string, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (ix Index) Len() int {
	n := 0
	for _, v := range ix {
		n += len(v)
	}
	return n
}

// Flatten lists every segment, keys in sorted order.
func (ix Index) Flatten() []Segment {
	out := make([]Segment, 0, ix.Len())
	for _, k := range ix.Keys() {
		out = append(out, ix[k]...)
	}
	return out
}
