package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NINAnor/birdnetfs/catalog"
	"github.com/NINAnor/birdnetfs/orchestrator"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Detect species in one recording, or in every recording under INPUT_PATH",
	Long: `Slide a SIG_LENGTH window over each recording, score the windows with the
classifier at MODEL_URL in batches of BATCH_SIZE and write the RESULT_TYPES
reports under OUTPUT_PATH, mirroring the input directory layout.

Without a file argument every AUDIO_EXTENSIONS file below INPUT_PATH is
analyzed by WORKERS concurrent workers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	cat, err := catalog.Load(catalog.Files{
		LabelsFile:      e.cfg.Labels.LabelsFile,
		TranslatedFile:  e.cfg.Labels.TranslatedFile,
		CodesFile:       e.cfg.Labels.CodesFile,
		SpeciesListFile: e.cfg.Labels.SpeciesListFile,
	})
	if err != nil {
		return err
	}
	p, err := orchestrator.NewPipeline(e.cfg, e.store, cat, e.log, orchestrator.WithProgress(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		if files, err = p.Files(ctx); err != nil {
			return fmt.Errorf("list %s: %w", e.cfg.InputPath, err)
		}
		e.log.WithField("files", len(files)).Info("analyzing corpus")
	}

	sum := p.AnalyzeAll(ctx, files, e.cfg.Workers)

	var failures []string
	for _, f := range sum.Failures {
		failures = append(failures, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	printSummary(cmd.OutOrStdout(), "analyze", []field{
		{"files", sum.Processed},
		{"failed", sum.Failed},
		{"elapsed", sum.Elapsed.Round(time.Millisecond)},
	}, failures)
	return e.finish(ctx, sum.Err())
}
