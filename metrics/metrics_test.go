package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFile(t *testing.T) {
	okBefore := testutil.ToFloat64(filesTotal.WithLabelValues("analyze", "success"))
	failBefore := testutil.ToFloat64(filesTotal.WithLabelValues("analyze", "failed"))

	RecordFile("analyze", nil, 1.2)
	RecordFile("analyze", errors.New("boom"), 0.3)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(filesTotal.WithLabelValues("analyze", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(filesTotal.WithLabelValues("analyze", "failed")))
}

func TestWriteTextfile(t *testing.T) {
	RecordBatch()
	RecordSegment("written")

	path := filepath.Join(t.TempDir(), "birdnetfs.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "birdnetfs_inference_batches_total")
	assert.Contains(t, string(data), `birdnetfs_segments_total{status="written"}`)
}

func TestWriteTextfileDisabled(t *testing.T) {
	assert.NoError(t, WriteTextfile(""))
}
