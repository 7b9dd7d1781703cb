// Command birdnetfs runs a species classifier over local or remote audio
// corpora and extracts labeled clips of the detections.
//
// Usage:
//
//	birdnetfs [--config file] <command> [args]
//
// Commands:
//
//	analyze      detection reports for one file or the whole INPUT_PATH
//	build-index  index selection tables into INDEX_DB
//	sample       cap detections per species into TO_EXTRACT_FILE
//	extract      write per-species WAV clips
//	version      print version information
package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/NINAnor/birdnetfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
