package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a mono signal from one rate to another. The result has
// exactly round(len(in)*to/from) samples.
func Resample(in []float32, from, to int) ([]float32, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("resample: invalid rates %d -> %d", from, to)
	}
	if from == to || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	output, err := r.ProcessFloat32(in)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush: %w", err)
	}
	for _, v := range tail {
		output = append(output, float32(v))
	}

	want := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	out := make([]float32, want)
	for i := 0; i < want && i < len(output); i++ {
		out[i] = output[i]
	}
	return out, nil
}
