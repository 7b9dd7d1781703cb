package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/NINAnor/birdnetfs/detection"
)

const tableHeader = "Selection\tView\tChannel\tBegin Time (s)\tEnd Time (s)\tLow Freq (Hz)\tHigh Freq (Hz)\tCommon Name\tSpecies Code\tConfidence\tBegin Path\tFile Offset (s)\n"

var (
	rHeader            = []string{"filepath", "start", "end", "scientific_name", "common_name", "confidence", "lat", "lon", "week", "overlap", "sensitivity", "min_conf", "species_list", "model"}
	kaleidoscopeHeader = []string{"INDIR", "FOLDER", "IN FILE", "OFFSET", "DURATION", "scientific_name", "common_name", "confidence", "lat", "lon", "week", "overlap", "sensitivity"}
	csvHeader          = []string{"Start (s)", "End (s)", "Scientific name", "Common name", "Confidence"}
)

func num(v float64) string  { return strconv.FormatFloat(v, 'f', -1, 64) }
func conf(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func renderTable(w io.Writer, windows []detection.Window, cat Catalog, c Context) (int, error) {
	bw := bufio.NewWriter(w)
	low, high := c.FreqBounds()
	lo, hi := num(low), num(high)

	bw.WriteString(tableHeader)
	id := 0
	for _, win := range windows {
		start, end := detection.FormatSeconds(win.Start), detection.FormatSeconds(win.End)
		for _, p := range win.Predictions {
			if !c.keep(cat, p) {
				continue
			}
			id++
			fmt.Fprintf(bw, "%d\tSpectrogram 1\t1\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				id, start, end, lo, hi, cat.CommonName(p.Label), cat.Code(p.Label), conf(p.Confidence), c.AudioPath, start)
		}
	}
	if id == 0 && c.OutputConfigured {
		id++
		fmt.Fprintf(bw, "%d\tSpectrogram 1\t1\t0\t3\t%s\t%s\tnocall\tnocall\t1.0\t%s\t0\n", id, lo, hi, c.AudioPath)
	}
	return id, bw.Flush()
}

func renderAudacity(w io.Writer, windows []detection.Window, cat Catalog, c Context) (int, error) {
	bw := bufio.NewWriter(w)
	rows := 0
	for _, win := range windows {
		start, end := detection.FormatSeconds(win.Start), detection.FormatSeconds(win.End)
		for _, p := range win.Predictions {
			if !c.keep(cat, p) {
				continue
			}
			rows++
			label := strings.ReplaceAll(cat.Translated(p.Label), "_", ", ")
			fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n", start, end, label, conf(p.Confidence))
		}
	}
	return rows, bw.Flush()
}

func renderR(w io.Writer, windows []detection.Window, cat Catalog, c Context) (int, error) {
	cw := csv.NewWriter(w)
	cw.Write(rHeader)
	rows := 0
	for _, win := range windows {
		for _, p := range win.Predictions {
			if !c.keep(cat, p) {
				continue
			}
			rows++
			sci, common := cat.Names(p.Label)
			cw.Write([]string{
				c.AudioPath,
				detection.FormatSeconds(win.Start),
				detection.FormatSeconds(win.End),
				sci,
				common,
				conf(p.Confidence),
				num(c.Latitude),
				num(c.Longitude),
				strconv.Itoa(c.Week),
				num(c.Overlap),
				num(c.Sensitivity),
				num(c.MinConfidence),
				c.SpeciesList,
				c.Model,
			})
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

func renderKaleidoscope(w io.Writer, windows []detection.Window, cat Catalog, c Context) (int, error) {
	dir, file := path.Split(c.AudioPath)
	parent, folder := path.Split(strings.TrimSuffix(dir, "/"))
	parent = strings.TrimRight(parent, "/")

	cw := csv.NewWriter(w)
	cw.Write(kaleidoscopeHeader)
	rows := 0
	for _, win := range windows {
		for _, p := range win.Predictions {
			if !c.keep(cat, p) {
				continue
			}
			rows++
			sci, common := cat.Names(p.Label)
			cw.Write([]string{
				parent,
				folder,
				file,
				detection.FormatSeconds(win.Start),
				num(win.End - win.Start),
				sci,
				common,
				conf(p.Confidence),
				conf(c.Latitude),
				conf(c.Longitude),
				strconv.Itoa(c.Week),
				num(c.Overlap),
				num(c.Sensitivity),
			})
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

func renderCSV(w io.Writer, windows []detection.Window, cat Catalog, c Context) (int, error) {
	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	rows := 0
	for _, win := range windows {
		for _, p := range win.Predictions {
			if !c.keep(cat, p) {
				continue
			}
			rows++
			sci, common := cat.Names(p.Label)
			cw.Write([]string{
				detection.FormatSeconds(win.Start),
				detection.FormatSeconds(win.End),
				sci,
				common,
				conf(p.Confidence),
			})
		}
	}
	cw.Flush()
	return rows, cw.Error()
}
