package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NINAnor/birdnetfs/db"
	"github.com/NINAnor/birdnetfs/segments"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Index the detections of every selection table under OUTPUT_PATH",
	Long: `Pair each *.BirdNET.selection.table.txt under OUTPUT_PATH with the recording
of the same stem under INPUT_PATH, keep the rows with confidence >= THRESHOLD
and store them in INDEX_DB.

With --sample the per-species cap NUM_SEGMENTS is applied before writing.`,
	Args: cobra.NoArgs,
	RunE: runBuildIndex,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw at most NUM_SEGMENTS detections per species from INDEX_DB into TO_EXTRACT_FILE",
	Long: `Read INDEX_DB, drop detections starting at or after SAMPLE_MAX_START seconds
(0 keeps all), sample at most NUM_SEGMENTS per species without replacement and
write the result to TO_EXTRACT_FILE with sequential row ids.`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

var (
	indexSample bool
	sampleSeed  uint64
)

func init() {
	buildIndexCmd.Flags().BoolVar(&indexSample, "sample", false, "cap detections per species before writing")
	buildIndexCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "sampling seed (0 draws a random one)")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "sampling seed (0 draws a random one)")
	rootCmd.AddCommand(buildIndexCmd, sampleCmd)
}

func sampler() *segments.Sampler {
	if sampleSeed == 0 {
		return segments.NewSampler()
	}
	return segments.NewSeededSampler(sampleSeed)
}

func runBuildIndex(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	began := time.Now()

	pairs, err := segments.FindPairs(ctx, e.store, e.cfg.InputPath, e.cfg.OutputPath, e.cfg.AudioExtensions)
	if err != nil {
		return fmt.Errorf("find reports: %w", err)
	}
	e.log.WithField("pairs", len(pairs)).Info("paired recordings with reports")

	segs, stats := segments.Build(ctx, e.store, pairs, e.cfg.Threshold, e.log)
	if indexSample {
		segs = sampler().Sample(segments.BySpecies(segs), e.cfg.NumSegments).Flatten()
	}

	out, err := db.Open(e.cfg.IndexDB, e.log)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.Replace(ctx, segs); err != nil {
		return fmt.Errorf("write %s: %w", e.cfg.IndexDB, err)
	}

	printSummary(cmd.OutOrStdout(), "build-index", []field{
		{"reports", stats.Files},
		{"failed", stats.Failed},
		{"bad rows", stats.BadRows},
		{"segments", len(segs)},
		{"species", len(segments.Summarize(segs))},
		{"index", e.cfg.IndexDB},
		{"elapsed", time.Since(began).Round(time.Millisecond)},
	}, nil)
	// unreadable reports are skipped, not failures of the run
	return e.finish(ctx, nil)
}

func runSample(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	in, err := db.Open(e.cfg.IndexDB, e.log)
	if err != nil {
		return err
	}
	defer in.Close()
	segs, err := in.Segments(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", e.cfg.IndexDB, err)
	}

	picked := sampler().Global(segs, e.cfg.SampleMaxStart, e.cfg.NumSegments)

	out, err := db.Open(e.cfg.ToExtractFile, e.log)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.Replace(ctx, picked); err != nil {
		return fmt.Errorf("write %s: %w", e.cfg.ToExtractFile, err)
	}

	fields := []field{
		{"indexed", len(segs)},
		{"sampled", len(picked)},
		{"output", e.cfg.ToExtractFile},
	}
	for _, st := range segments.Summarize(picked) {
		fields = append(fields, field{st.Species, fmt.Sprintf("%d (mean %.3f, max %.3f)", st.Count, st.Mean, st.Max)})
	}
	printSummary(cmd.OutOrStdout(), "sample", fields, nil)
	return e.finish(ctx, nil)
}
