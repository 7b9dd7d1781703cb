package segments

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/NINAnor/birdnetfs/storage"
)

var errNotSelectionTable = errors.New("not a selection table")

// Column positions in a selection table row.
const (
	colBegin   = 3
	colEnd     = 4
	colSpecies = 7
	minColumns = 8
)

// Parse reads one selection table and returns the rows whose confidence is
// at least threshold. Malformed rows are skipped and counted in bad. The
// confidence is the third column from the end.
func Parse(r io.Reader, audio string, threshold float64) (segs []Segment, bad int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: empty file", errNotSelectionTable)
	}
	if !strings.HasPrefix(sc.Text(), "Selection\t") {
		return nil, 0, errNotSelectionTable
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		seg, ok := parseRow(line, audio)
		if !ok {
			bad++
			continue
		}
		if seg.Confidence >= threshold {
			segs = append(segs, seg)
		}
	}
	return segs, bad, sc.Err()
}

func parseRow(line, audio string) (Segment, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) < minColumns {
		return Segment{}, false
	}
	start, err1 := strconv.ParseFloat(cols[colBegin], 64)
	end, err2 := strconv.ParseFloat(cols[colEnd], 64)
	conf, err3 := strconv.ParseFloat(cols[len(cols)-3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Segment{}, false
	}
	return Segment{
		Audio:      audio,
		Start:      start,
		End:        end,
		Species:    cols[colSpecies],
		Confidence: conf,
	}, true
}

// BuildStats counts what a corpus scan saw.
type BuildStats struct {
	Files   int
	Failed  int
	BadRows int
}

// Build parses every pair's report. A report that cannot be read or is not
// a selection table is logged as a *ReportParseError and contributes no
// segments.
func Build(ctx context.Context, s storage.FileStore, pairs []Pair, threshold float64, log logrus.FieldLogger) ([]Segment, BuildStats) {
	var (
		all   []Segment
		stats BuildStats
	)
	for _, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		stats.Files++
		segs, bad, err := parseReport(ctx, s, p, threshold)
		if err != nil {
			stats.Failed++
			log.WithError(err).WithField("report", p.Report).Error("skipping report")
			continue
		}
		if bad > 0 {
			stats.BadRows += bad
			log.WithFields(logrus.Fields{"report": p.Report, "bad_rows": bad}).Warn("dropped malformed rows")
		}
		all = append(all, segs...)
	}
	log.WithFields(logrus.Fields{"segments": len(all), "files": stats.Files}).Info("segment index built")
	return all, stats
}

func parseReport(ctx context.Context, s storage.FileStore, p Pair, threshold float64) ([]Segment, int, error) {
	r, err := s.Read(ctx, p.Report)
	if err != nil {
		return nil, 0, &ReportParseError{Path: p.Report, Err: err}
	}
	defer r.Close()
	segs, bad, err := Parse(r, p.Audio, threshold)
	if err != nil {
		return nil, bad, &ReportParseError{Path: p.Report, Err: err}
	}
	return segs, bad, nil
}
