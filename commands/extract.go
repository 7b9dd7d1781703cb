package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/NINAnor/birdnetfs/db"
	"github.com/NINAnor/birdnetfs/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [audio]",
	Short: "Cut the sampled detections into per-species WAV clips",
	Long: `Read TO_EXTRACT_FILE and write one SEGMENT_LENGTH clip per detection to
OUT_PATH_SEGMENTS/<species>/, resampled to CLIP_SAMPLE_RATE.

Without an audio argument every recording in TO_EXTRACT_FILE is processed
by WORKERS concurrent workers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if _, err := os.Stat(e.cfg.ToExtractFile); err != nil {
		return fmt.Errorf("extraction list %s: %w (run sample first)", e.cfg.ToExtractFile, err)
	}
	list, err := db.Open(e.cfg.ToExtractFile, e.log)
	if err != nil {
		return err
	}
	defer list.Close()

	x := &extract.Extractor{
		Store:      e.store,
		Root:       e.cfg.OutPathSegments,
		ClipLength: e.cfg.SegmentLength,
		ClipRate:   e.cfg.ClipSampleRate,
		Log:        e.log,
	}
	sum, err := x.Run(ctx, e.store, list, args, e.cfg.Workers)
	if err != nil {
		return err
	}

	var failures []string
	for _, f := range sum.Failures {
		failures = append(failures, fmt.Sprintf("%s: %v", f.Audio, f.Err))
	}
	printSummary(cmd.OutOrStdout(), "extract", []field{
		{"files", sum.Files},
		{"failed", sum.Failed},
		{"written", sum.Written},
		{"skipped", sum.Skipped},
		{"output", e.cfg.OutPathSegments},
		{"elapsed", sum.Elapsed.Round(time.Millisecond)},
	}, failures)
	return e.finish(ctx, sum.Err())
}
