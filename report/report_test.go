package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NINAnor/birdnetfs/catalog"
	"github.com/NINAnor/birdnetfs/detection"
)

const (
	blackbird = "Turdus merula_Eurasian Blackbird"
	robin     = "Erithacus rubecula_European Robin"
)

func testCatalog(t *testing.T, species ...string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]string{blackbird, robin},
		nil,
		map[string]string{blackbird: "eurbla"},
		species,
	)
	require.NoError(t, err)
	return c
}

func testContext() Context {
	return Context{
		AudioPath:        "/data/site1/rec.wav",
		SampleRate:       48000,
		MinConfidence:    0.5,
		SigFMin:          0,
		SigFMax:          15000,
		BandpassFMin:     0,
		BandpassFMax:     15000,
		OutputConfigured: true,
		Latitude:         -1,
		Longitude:        -1,
		Week:             -1,
		Sensitivity:      1,
		Model:            "BirdNET_GLOBAL_6K_V2.4_Model_FP32",
	}
}

func table(t *testing.T, windows ...detection.Window) *detection.Table {
	t.Helper()
	tbl := detection.NewTable()
	for _, w := range windows {
		require.NoError(t, tbl.Add(w))
	}
	return tbl
}

func render(t *testing.T, f Format, tbl *detection.Table, cat Catalog, c Context) (string, int) {
	t.Helper()
	var sb strings.Builder
	n, err := Render(&sb, f, tbl, cat, c)
	require.NoError(t, err)
	return sb.String(), n
}

func TestTableFormat(t *testing.T) {
	tbl := table(t,
		detection.Window{Start: 3, End: 6, Predictions: []detection.Prediction{{robin, 0.8}, {blackbird, 0.1}}},
		detection.Window{Start: 0, End: 3, Predictions: []detection.Prediction{{blackbird, 0.91234}, {robin, 0.6}}},
	)
	out, n := render(t, Table, tbl, testCatalog(t), testContext())
	assert.Equal(t, 3, n)
	assert.Equal(t, tableHeader+
		"1\tSpectrogram 1\t1\t0\t3\t0\t15000\tEurasian Blackbird\teurbla\t0.9123\t/data/site1/rec.wav\t0\n"+
		"2\tSpectrogram 1\t1\t0\t3\t0\t15000\tEuropean Robin\t"+robin+"\t0.6000\t/data/site1/rec.wav\t0\n"+
		"3\tSpectrogram 1\t1\t3\t6\t0\t15000\tEuropean Robin\t"+robin+"\t0.8000\t/data/site1/rec.wav\t3\n",
		out)
}

func TestFilterIsStrict(t *testing.T) {
	c := testContext()
	tbl := table(t, detection.Window{Start: 0, End: 3, Predictions: []detection.Prediction{
		{blackbird, 0.5},
		{robin, 0.5 + 1e-6},
	}})
	out, n := render(t, CSV, tbl, testCatalog(t), c)
	assert.Equal(t, 1, n)
	assert.NotContains(t, out, "Eurasian Blackbird")
	assert.Contains(t, out, "European Robin")
}

func TestFilterAtClassifierPrecision(t *testing.T) {
	c := testContext()
	c.MinConfidence = 0.1
	// a float32 score of 0.1 widens to 0.10000000149
	tbl := table(t, detection.Window{Start: 0, End: 3, Predictions: detection.Rank(
		[]string{blackbird, robin}, []float32{0.9, 0.1})})
	out, n := render(t, CSV, tbl, testCatalog(t), c)
	assert.Equal(t, 1, n)
	assert.NotContains(t, out, "European Robin")
}

func TestSpeciesListFilter(t *testing.T) {
	tbl := table(t, detection.Window{Start: 0, End: 3, Predictions: []detection.Prediction{{blackbird, 0.9}, {robin, 0.9}}})
	out, n := render(t, Audacity, tbl, testCatalog(t, robin), testContext())
	assert.Equal(t, 1, n)
	assert.Equal(t, "0\t3\tErithacus rubecula, European Robin\t0.9000\n", out)
}

func TestPlaceholderRow(t *testing.T) {
	tbl := table(t, detection.Window{Start: 0, End: 3, Predictions: []detection.Prediction{{blackbird, 0.1}}})
	c := testContext()
	c.SampleRate = 16000

	out, n := render(t, Table, tbl, testCatalog(t), c)
	assert.Equal(t, 1, n)
	assert.Equal(t, tableHeader+"1\tSpectrogram 1\t1\t0\t3\t0\t8000\tnocall\tnocall\t1.0\t/data/site1/rec.wav\t0\n", out)

	c.OutputConfigured = false
	out, n = render(t, Table, tbl, testCatalog(t), c)
	assert.Equal(t, 0, n)
	assert.Equal(t, tableHeader, out)

	out, n = render(t, CSV, detection.NewTable(), testCatalog(t), testContext())
	assert.Equal(t, 0, n)
	assert.Equal(t, "Start (s),End (s),Scientific name,Common name,Confidence\n", out)
}

func TestFreqBounds(t *testing.T) {
	c := testContext()
	c.SigFMin, c.BandpassFMin = 150, 200
	c.SigFMax, c.BandpassFMax = 15000, 12000
	low, high := c.FreqBounds()
	assert.Equal(t, 200.0, low)
	assert.Equal(t, 12000.0, high)

	c.SampleRate = 22050
	c.BandpassFMax = 15000
	_, high = c.FreqBounds()
	assert.Equal(t, 11025.0, high)
}

func TestRAndKaleidoscope(t *testing.T) {
	tbl := table(t, detection.Window{Start: 2.5, End: 5.5, Predictions: []detection.Prediction{{blackbird, 0.75}}})
	c := testContext()
	c.Overlap = 0.5

	out, _ := render(t, R, tbl, testCatalog(t), c)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(rHeader, ","), lines[0])
	assert.Equal(t, "/data/site1/rec.wav,2.5,5.5,Turdus merula,Eurasian Blackbird,0.7500,-1,-1,-1,0.5,1,0.5,,BirdNET_GLOBAL_6K_V2.4_Model_FP32", lines[1])

	out, _ = render(t, Kaleidoscope, tbl, testCatalog(t), c)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "/data,site1,rec.wav,2.5,3,Turdus merula,Eurasian Blackbird,0.7500,-1.0000,-1.0000,-1,0.5,1", lines[1])
}

func TestParseFormats(t *testing.T) {
	fs, err := ParseFormats([]string{"table", "CSV", "table", " r "})
	require.NoError(t, err)
	assert.Equal(t, []Format{Table, CSV, R}, fs)

	_, err = ParseFormats([]string{"parquet"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Render(&strings.Builder{}, Format("xml"), detection.NewTable(), testCatalog(t), testContext())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "rec.BirdNET.selection.table.txt", FileName("rec", Table))
	assert.Equal(t, "rec.BirdNET.results.txt", FileName("rec", Audacity))
	assert.Equal(t, "rec.BirdNET.results.r.csv", FileName("rec", R))
	assert.Equal(t, "rec.BirdNET.results.kaleidoscope.csv", FileName("rec", Kaleidoscope))
	assert.Equal(t, "rec.BirdNET.results.csv", FileName("rec", CSV))
}
