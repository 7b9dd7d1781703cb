package orchestrator

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/NINAnor/birdnetfs/detection"
	"github.com/NINAnor/birdnetfs/report"
)

// resultDir is where reports for audioPath go: OUTPUT_PATH mirroring the
// directory below INPUT_PATH, or next to the audio without OUTPUT_PATH.
func resultDir(inputRoot, outputRoot, audioPath string) string {
	dir := path.Dir(audioPath)
	if outputRoot == "" {
		return dir
	}
	root := path.Clean(inputRoot)
	if inputRoot != "" && (dir == root || strings.HasPrefix(dir, root+"/")) {
		return path.Join(outputRoot, strings.TrimPrefix(dir, root))
	}
	return outputRoot
}

// stem is the base name without its last extension.
func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ResultPaths lists the report files AnalyzeFile writes for audioPath.
func (p *Pipeline) ResultPaths(audioPath string) map[report.Format]string {
	dir := resultDir(p.cfg.InputPath, p.cfg.OutputPath, audioPath)
	out := make(map[report.Format]string, len(p.formats))
	for _, f := range p.formats {
		out[f] = path.Join(dir, report.FileName(stem(audioPath), f))
	}
	return out
}

// persist writes one file per configured format. rows is the row count of
// the first format.
func (p *Pipeline) persist(ctx context.Context, audioPath string, tbl *detection.Table) (outputs []string, rows int, err error) {
	paths := p.ResultPaths(audioPath)
	rc := report.NewContext(p.cfg, audioPath)
	for i, f := range p.formats {
		dst := paths[f]
		n, err := p.writeReport(ctx, dst, f, tbl, rc)
		if err != nil {
			return outputs, rows, fmt.Errorf("write %s report %s: %w", f, dst, err)
		}
		if i == 0 {
			rows = n
		}
		outputs = append(outputs, dst)
	}
	return outputs, rows, nil
}

func (p *Pipeline) writeReport(ctx context.Context, dst string, f report.Format, tbl *detection.Table, rc report.Context) (int, error) {
	w, err := p.store.Write(ctx, dst)
	if err != nil {
		return 0, err
	}
	n, err := report.Render(w, f, tbl, p.catalog, rc)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return n, err
}
