package segments

import (
	"context"
	"strings"

	"github.com/NINAnor/birdnetfs/report"
	"github.com/NINAnor/birdnetfs/storage"
)

// Pair is an audio file and the selection table produced from it.
type Pair struct {
	Audio  string
	Report string
}

// Match pairs every report with the audio file of the same stem. When two
// audio files share a stem the first one listed wins.
func Match(audio, reports []string) []Pair {
	byStem := make(map[string]string, len(audio))
	for _, a := range audio {
		st := Stem(a)
		if _, ok := byStem[st]; !ok {
			byStem[st] = a
		}
	}
	var pairs []Pair
	for _, r := range reports {
		if a, ok := byStem[Stem(r)]; ok {
			pairs = append(pairs, Pair{Audio: a, Report: r})
		}
	}
	return pairs
}

// IsSelectionTable reports whether p is named like a table-format report.
func IsSelectionTable(p string) bool {
	return strings.HasSuffix(p, report.FileName("", report.Table))
}

// FindPairs walks audioRoot for audio files and reportRoot for selection
// tables and matches them. An empty reportRoot means the reports sit next
// to the audio.
func FindPairs(ctx context.Context, s storage.Store, audioRoot, reportRoot string, exts []string) ([]Pair, error) {
	if reportRoot == "" {
		reportRoot = audioRoot
	}
	var audio, reports []string
	err := storage.WalkExt(ctx, s, audioRoot, exts, func(p string) error {
		audio = append(audio, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.Walk(ctx, reportRoot, func(p string) error {
		if IsSelectionTable(p) {
			reports = append(reports, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Match(audio, reports), nil
}
