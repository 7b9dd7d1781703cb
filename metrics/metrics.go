// Package metrics provides Prometheus metrics for the analysis and
// extraction pipelines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// filesTotal counts processed files.
	// Labels:
	//   - stage: "analyze" or "extract"
	//   - status: "success" or "failed"
	filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdnetfs_files_total",
			Help: "Total number of processed audio files",
		},
		[]string{"stage", "status"},
	)

	// fileDuration records wall time per file.
	fileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "birdnetfs_file_duration_seconds",
			Help:    "Wall time spent per audio file",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"stage"},
	)

	inferenceBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdnetfs_inference_batches_total",
		Help: "Total number of classifier calls",
	})

	// segmentsTotal counts clip writes.
	// Labels:
	//   - status: "written", "skipped" or "failed"
	segmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdnetfs_segments_total",
			Help: "Total number of extracted segments",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(filesTotal)
	prometheus.MustRegister(fileDuration)
	prometheus.MustRegister(inferenceBatches)
	prometheus.MustRegister(segmentsTotal)
}

// RecordFile records one file outcome for a pipeline stage.
func RecordFile(stage string, err error, seconds float64) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	filesTotal.WithLabelValues(stage, status).Inc()
	fileDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordBatch records one classifier call.
func RecordBatch() {
	inferenceBatches.Inc()
}

// RecordSegment records one segment outcome.
func RecordSegment(status string) {
	segmentsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile dumps the default registry in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
