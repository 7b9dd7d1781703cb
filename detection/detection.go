// Package detection holds the per-file detection table: for every scored
// window, the labels ranked by confidence.
package detection

import (
	"fmt"
	"slices"
	"strconv"
)

type Prediction struct {
	Label      string
	Confidence float64
}

// Window is one scored time span. Predictions are sorted by descending
// confidence.
type Window struct {
	Start, End  float64
	Predictions []Prediction
}

func (w Window) Key() string { return Key(w.Start, w.End) }

// Key formats a time span the way reports print it, e.g. "0-3" or "2.5-5.5".
func Key(start, end float64) string {
	return FormatSeconds(start) + "-" + FormatSeconds(end)
}

// FormatSeconds prints an offset with the shortest exact decimal form.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// Table is an insertion-ordered map from window key to ranked predictions.
// It is owned by one file's analysis and is not safe for concurrent use.
type Table struct {
	keys    []string
	windows map[string]Window
}

func NewTable() *Table {
	return &Table{windows: map[string]Window{}}
}

// Add stores w under its key. A window is scored once; a repeated key is an
// error.
func (t *Table) Add(w Window) error {
	k := w.Key()
	if _, ok := t.windows[k]; ok {
		return fmt.Errorf("detection: window %s already scored", k)
	}
	t.keys = append(t.keys, k)
	t.windows[k] = w
	return nil
}

func (t *Table) Len() int { return len(t.keys) }

// Keys returns the window keys in insertion order.
func (t *Table) Keys() []string { return slices.Clone(t.keys) }

func (t *Table) Get(key string) (Window, bool) {
	w, ok := t.windows[key]
	return w, ok
}

// Chronological returns the windows sorted by start time. Windows with equal
// starts keep insertion order.
func (t *Table) Chronological() []Window {
	out := make([]Window, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.windows[k])
	}
	slices.SortStableFunc(out, func(a, b Window) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return out
}

// Rank pairs scores with labels positionally and sorts them by descending
// confidence. Ties keep label order.
func Rank(labels []string, scores []float32) []Prediction {
	out := make([]Prediction, len(labels))
	for i, l := range labels {
		out[i] = Prediction{Label: l, Confidence: float64(scores[i])}
	}
	slices.SortStableFunc(out, func(a, b Prediction) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	return out
}
