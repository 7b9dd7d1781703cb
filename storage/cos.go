package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

// COSStore implements Store on a Tencent Cloud Object Storage bucket.
type COSStore struct {
	client *cos.Client
	prefix string
}

func NewCOS(client *cos.Client, prefix string) *COSStore {
	return &COSStore{client: client, prefix: strings.Trim(prefix, "/")}
}

func (s *COSStore) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if s.prefix == "" {
		return p
	}
	if p == "" {
		return s.prefix
	}
	return s.prefix + "/" + p
}

func (s *COSStore) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, s.key(p), nil)
	if err != nil {
		if isCOSNotFound(err) {
			return nil, fmt.Errorf("storage: read %s: %w", p, os.ErrNotExist)
		}
		return nil, err
	}
	return resp.Body, nil
}

// Write buffers in memory and uploads on Close. Reports and clips are small
// enough that a single Put is simpler than a multipart upload.
func (s *COSStore) Write(ctx context.Context, p string) (io.WriteCloser, error) {
	return &cosWriter{ctx: ctx, store: s, key: s.key(p)}, nil
}

func (s *COSStore) Delete(ctx context.Context, p string) error {
	_, err := s.client.Object.Delete(ctx, s.key(p))
	if err != nil && isCOSNotFound(err) {
		return nil
	}
	return err
}

func (s *COSStore) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.Object.Head(ctx, s.key(p), nil)
	if err != nil {
		if isCOSNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *COSStore) Walk(ctx context.Context, prefix string, fn func(string) error) error {
	listPrefix := s.key(prefix)
	if listPrefix != "" && !strings.HasSuffix(listPrefix, "/") {
		listPrefix += "/"
	}
	marker := ""
	for {
		res, _, err := s.client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix: listPrefix,
			Marker: marker,
		})
		if err != nil {
			return err
		}
		for _, obj := range res.Contents {
			if strings.HasSuffix(obj.Key, "/") {
				continue
			}
			k := obj.Key
			if s.prefix != "" {
				k = strings.TrimPrefix(k, s.prefix+"/")
			}
			if err := fn(k); err != nil {
				return err
			}
		}
		if !res.IsTruncated {
			return nil
		}
		marker = res.NextMarker
		if marker == "" && len(res.Contents) > 0 {
			marker = res.Contents[len(res.Contents)-1].Key
		}
	}
}

func (s *COSStore) Ping(ctx context.Context) error {
	_, err := s.client.Bucket.Head(ctx)
	return err
}

type cosWriter struct {
	ctx   context.Context
	store *COSStore
	key   string
	buf   bytes.Buffer
}

func (w *cosWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *cosWriter) Close() error {
	_, err := w.store.client.Object.Put(w.ctx, w.key, bytes.NewReader(w.buf.Bytes()), nil)
	return err
}

func isCOSNotFound(err error) bool {
	var e *cos.ErrorResponse
	if errors.As(err, &e) && e.Response != nil {
		return e.Response.StatusCode == http.StatusNotFound
	}
	return false
}

var _ Store = (*COSStore)(nil)
