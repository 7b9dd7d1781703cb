package segments

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeciesStats summarizes the confidences of one species' segments.
type SpeciesStats struct {
	Species string
	Count   int
	Mean    float64
	Max     float64
}

// Summarize returns per-species statistics, sorted by species.
func Summarize(segs []Segment) []SpeciesStats {
	ix := BySpecies(segs)
	out := make([]SpeciesStats, 0, len(ix))
	for _, sp := range ix.Keys() {
		conf := make([]float64, len(ix[sp]))
		for i, s := range ix[sp] {
			conf[i] = s.Confidence
		}
		out = append(out, SpeciesStats{
			Species: sp,
			Count:   len(conf),
			Mean:    stat.Mean(conf, nil),
			Max:     floats.Max(conf),
		})
	}
	return out
}
