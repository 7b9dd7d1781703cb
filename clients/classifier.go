package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// --- Species classifier (/predict) ---

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type PredictReq struct {
	Model       string      `json:"model,omitempty" msgpack:"model,omitempty"`
	SampleRate  int         `json:"sample_rate" msgpack:"sample_rate"`
	Sensitivity float64     `json:"sensitivity" msgpack:"sensitivity"`
	Frames      [][]float32 `json:"frames" msgpack:"frames"`
}

type PredictResp struct {
	Scores [][]float32 `json:"scores" msgpack:"scores"`
}

type ClassifierConfig struct {
	URL         string
	Model       string
	Codec       string
	SampleRate  int
	Sensitivity float64
}

// Classifier calls a model server that scores a batch of frames per request.
// One score vector comes back per frame, in label catalog order.
type Classifier struct {
	h   *HTTP
	cfg ClassifierConfig
}

func NewClassifier(h *HTTP, cfg ClassifierConfig) *Classifier {
	if cfg.Codec == "" {
		cfg.Codec = CodecJSON
	}
	return &Classifier{h: h, cfg: cfg}
}

func (c *Classifier) Predict(ctx context.Context, frames [][]float32) ([][]float32, error) {
	body, contentType, err := c.encode(PredictReq{
		Model:       c.cfg.Model,
		SampleRate:  c.cfg.SampleRate,
		Sensitivity: c.cfg.Sensitivity,
		Frames:      frames,
	})
	if err != nil {
		return nil, fmt.Errorf("predict encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	resp, err := c.h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("predict %s: %s", resp.Status, string(b))
	}

	var out PredictResp
	if err := c.decode(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("predict decode: %w", err)
	}
	if len(out.Scores) != len(frames) {
		return nil, fmt.Errorf("predict: got %d score vectors for %d frames", len(out.Scores), len(frames))
	}
	return out.Scores, nil
}

func (c *Classifier) encode(v any) ([]byte, string, error) {
	if c.cfg.Codec == CodecMsgpack {
		b, err := msgpack.Marshal(v)
		return b, "application/msgpack", err
	}
	b, err := json.Marshal(v)
	return b, "application/json", err
}

func (c *Classifier) decode(r io.Reader, v any) error {
	if c.cfg.Codec == CodecMsgpack {
		return msgpack.NewDecoder(r).Decode(v)
	}
	return json.NewDecoder(r).Decode(v)
}
