package segments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NINAnor/birdnetfs/storage"
)

const header = "Selection\tView\tChannel\tBegin Time (s)\tEnd Time (s)\tLow Freq (Hz)\tHigh Freq (Hz)\tCommon Name\tSpecies Code\tConfidence\tBegin Path\tFile Offset (s)\n"

func row(id int, start, end float64, species string, conf float64) string {
	return fmt.Sprintf("%d\tSpectrogram 1\t1\t%g\t%g\t0\t15000\t%s\tcode\t%.4f\t/a/rec.wav\t%g\n", id, start, end, species, conf, start)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "rec", Stem("/data/a/rec.wav"))
	assert.Equal(t, "rec", Stem("out/rec.BirdNET.selection.table.txt"))
	assert.Equal(t, "README", Stem("README"))
}

func TestMatchFirstAudioWins(t *testing.T) {
	audio := []string{"a/rec1.wav", "b/rec1.flac", "a/rec2.wav"}
	reports := []string{"r/rec1.BirdNET.selection.table.txt", "r/other.BirdNET.selection.table.txt", "r/x/rec2.BirdNET.selection.table.txt"}
	assert.Equal(t, []Pair{
		{Audio: "a/rec1.wav", Report: "r/rec1.BirdNET.selection.table.txt"},
		{Audio: "a/rec2.wav", Report: "r/x/rec2.BirdNET.selection.table.txt"},
	}, Match(audio, reports))
}

func TestParseThreshold(t *testing.T) {
	in := header +
		row(1, 0, 3, "Eurasian Blackbird", 0.9) +
		row(2, 3, 6, "European Robin", 0.6) +
		row(3, 6, 9, "European Robin", 0.5999)
	segs, bad, err := Parse(strings.NewReader(in), "a/rec.wav", 0.6)
	require.NoError(t, err)
	assert.Zero(t, bad)
	assert.Equal(t, []Segment{
		{Audio: "a/rec.wav", Start: 0, End: 3, Species: "Eurasian Blackbird", Confidence: 0.9},
		{Audio: "a/rec.wav", Start: 3, End: 6, Species: "European Robin", Confidence: 0.6},
	}, segs)
}

func TestParseCountsBadRows(t *testing.T) {
	in := header +
		"garbage\n" +
		"1\tSpectrogram 1\t1\tzero\t3\t0\t15000\tRobin\tcode\t0.9\tp\t0\n" +
		"\n" +
		row(2, 3, 6, "European Robin", 0.8)
	segs, bad, err := Parse(strings.NewReader(in), "a.wav", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, bad)
	require.Len(t, segs, 1)
	assert.Equal(t, 3.0, segs[0].Start)
}

func TestParseRejectsOtherFiles(t *testing.T) {
	_, _, err := Parse(strings.NewReader("Start (s),End (s)\n0,3\n"), "a.wav", 0)
	assert.ErrorIs(t, err, errNotSelectionTable)
	_, _, err = Parse(strings.NewReader(""), "a.wav", 0)
	assert.ErrorIs(t, err, errNotSelectionTable)
}

func TestFindPairsReportsNextToAudio(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := storage.Open("")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, storage.WriteFile(ctx, store, "in/rec.wav", nil))
	require.NoError(t, storage.WriteFile(ctx, store, "in/rec.BirdNET.selection.table.txt", []byte(header)))

	want := []Pair{{Audio: "in/rec.wav", Report: "in/rec.BirdNET.selection.table.txt"}}
	pairs, err := FindPairs(ctx, store, "in", "", []string{".wav"})
	require.NoError(t, err)
	assert.Equal(t, want, pairs)

	pairs, err = FindPairs(ctx, store, "", "", []string{".wav"})
	require.NoError(t, err)
	assert.Equal(t, want, pairs)
}

func TestBuildSkipsBadReports(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, storage.WriteFile(ctx, store, "in/a.wav", nil))
	require.NoError(t, storage.WriteFile(ctx, store, "in/b.wav", nil))
	require.NoError(t, storage.WriteFile(ctx, store, "in/c.wav", nil))
	require.NoError(t, storage.WriteFile(ctx, store, "out/a.BirdNET.selection.table.txt", []byte(header+row(1, 0, 3, "Robin", 0.9)+"bad\n")))
	require.NoError(t, storage.WriteFile(ctx, store, "out/b.BirdNET.selection.table.txt", []byte("not a table")))
	require.NoError(t, storage.WriteFile(ctx, store, "out/c.BirdNET.results.csv", []byte("Start (s)\n")))

	pairs, err := FindPairs(ctx, store, "in", "out", []string{".wav"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	pairs = append(pairs, Pair{Audio: "in/c.wav", Report: "out/missing.BirdNET.selection.table.txt"})
	log, hook := test.NewNullLogger()
	segs, stats := Build(ctx, store, pairs, 0.6, log)
	require.Len(t, segs, 1)
	assert.Equal(t, "in/a.wav", segs[0].Audio)
	assert.Equal(t, BuildStats{Files: 3, Failed: 2, BadRows: 1}, stats)

	var parseErrs int
	for _, e := range hook.AllEntries() {
		var pe *ReportParseError
		if err, ok := e.Data["error"].(error); ok && errors.As(err, &pe) {
			parseErrs++
		}
	}
	assert.Equal(t, 2, parseErrs)
}

func manySegments(species string, n int) []Segment {
	out := make([]Segment, n)
	for i := range out {
		out[i] = Segment{Audio: fmt.Sprintf("rec%03d.wav", i), Start: float64(i), End: float64(i + 3), Species: species, Confidence: 0.9}
	}
	return out
}

func TestSampleCap(t *testing.T) {
	orig := manySegments("Robin", 100)
	allowed := map[Segment]bool{}
	for _, s := range orig {
		allowed[s] = true
	}

	for seed := uint64(0); seed < 5; seed++ {
		ix := NewSeededSampler(seed).Sample(BySpecies(append(orig, manySegments("Owl", 2)...)), 10)
		require.Len(t, ix["Robin"], 10)
		assert.Len(t, ix["Owl"], 2)

		seen := map[Segment]bool{}
		for _, s := range ix["Robin"] {
			assert.True(t, allowed[s])
			assert.False(t, seen[s], "duplicate %v", s)
			seen[s] = true
		}
	}
}

func TestSampleSeedIsReproducible(t *testing.T) {
	a := NewSeededSampler(42).Sample(BySpecies(manySegments("Robin", 50)), 5)
	b := NewSeededSampler(42).Sample(BySpecies(manySegments("Robin", 50)), 5)
	assert.Equal(t, a, b)

	assert.Empty(t, NewSampler().Sample(BySpecies(manySegments("Robin", 5)), 0)["Robin"])
}

func TestGlobalSampler(t *testing.T) {
	segs := append(manySegments("Robin", 20), Segment{Audio: "late.wav", Start: 3600, End: 3603, Species: "Owl", Confidence: 1})
	segs = append(segs, Segment{Audio: "early.wav", Start: 10, End: 13, Species: "Owl", Confidence: 1})

	out := NewSeededSampler(1).Global(segs, 3600, 3)
	require.Len(t, out, 4)
	assert.Equal(t, "Owl", out[0].Species)
	assert.Equal(t, "early.wav", out[0].Audio)
	for i, s := range out {
		assert.Equal(t, int64(i), s.RowID)
	}

	out = NewSeededSampler(1).Global(segs, 0, 100)
	assert.Len(t, out, 22)
}

func TestIndexViews(t *testing.T) {
	segs := []Segment{
		{Audio: "b.wav", Species: "Robin"},
		{Audio: "a.wav", Species: "Owl"},
		{Audio: "b.wav", Species: "Owl"},
	}
	assert.Equal(t, []string{"Owl", "Robin"}, BySpecies(segs).Keys())
	byAudio := ByAudio(segs)
	assert.Equal(t, []string{"a.wav", "b.wav"}, byAudio.Keys())
	assert.Len(t, byAudio["b.wav"], 2)
	assert.Equal(t, 3, byAudio.Len())
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]Segment{
		{Species: "Robin", Confidence: 0.5},
		{Species: "Owl", Confidence: 0.75},
		{Species: "Robin", Confidence: 1},
	})
	assert.Equal(t, []SpeciesStats{
		{Species: "Owl", Count: 1, Mean: 0.75, Max: 0.75},
		{Species: "Robin", Count: 2, Mean: 0.75, Max: 1},
	}, stats)
}
