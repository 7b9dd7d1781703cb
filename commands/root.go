// Package commands is the birdnetfs command line.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath       string
	tolerateFailures bool
)

var rootCmd = &cobra.Command{
	Use:   "birdnetfs",
	Short: "Detect bird vocalisations in audio corpora and extract labeled clips",
	Long: `birdnetfs - run a species classifier over local or remote audio corpora.

Analysis:
  analyze [file]        window, classify and write detection reports

Extraction:
  build-index           pair recordings with their selection tables and index the detections
  sample                draw at most NUM_SEGMENTS detections per species into TO_EXTRACT_FILE
  extract [audio]       cut the sampled detections into per-species WAV clips

Configuration is read from --config (default config_connection.yaml, then
config/$CONFIG_ENV/config.yaml) and BIRDNETFS_* environment variables.

Examples:
  birdnetfs analyze -c config_connection.yaml
  birdnetfs analyze recordings/site1/20240501_0500.wav
  birdnetfs build-index && birdnetfs sample && birdnetfs extract`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight work.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config_connection.yaml)")
	rootCmd.PersistentFlags().BoolVar(&tolerateFailures, "tolerate-failures", false, "exit zero even when some files failed")
}
