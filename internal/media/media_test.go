package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBackend) Put(_ context.Context, key, ct string, body io.Reader, _ int64) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = ct
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBackend) URL(key string) string { return "https://media.test/" + key }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUploadStoresUnderFolder(t *testing.T) {
	backend := newMemBackend()
	s := NewService(backend, zap.NewNop())

	img, err := s.Upload(context.Background(), pngBytes(t, 40, 30), "blog-site")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.ExternalID, "blog-site/"))
	assert.True(t, strings.HasSuffix(img.ExternalID, ".png"))
	assert.Equal(t, "https://media.test/"+img.ExternalID, img.URL)
	assert.Contains(t, backend.objects, img.ExternalID)
	assert.Equal(t, "image/png", backend.types[img.ExternalID])
}

func TestUploadDownscales(t *testing.T) {
	backend := newMemBackend()
	s := NewService(backend, zap.NewNop())

	img, err := s.Upload(context.Background(), pngBytes(t, 1000, 800), "")
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(backend.objects[img.ExternalID]))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestUploadRejections(t *testing.T) {
	s := NewService(newMemBackend(), zap.NewNop())

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmpty},
		{"pdf", []byte("%PDF-1.7\n..."), ErrNotImage},
		{"html", []byte("<html><body>hi</body></html>"), ErrNotImage},
		{"too large", append(pngBytes(t, 1, 1), make([]byte, MaxUploadBytes)...), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Upload(context.Background(), tt.data, "f")
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRejection(err))
		})
	}
}

func TestUploadBackendFailure(t *testing.T) {
	backend := newMemBackend()
	backend.putErr = errors.New("bucket unreachable")
	s := NewService(backend, zap.NewNop())

	_, err := s.Upload(context.Background(), pngBytes(t, 10, 10), "f")
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestDelete(t *testing.T) {
	backend := newMemBackend()
	s := NewService(backend, zap.NewNop())

	img, err := s.Upload(context.Background(), pngBytes(t, 10, 10), "f")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), img.ExternalID))
	assert.NotContains(t, backend.objects, img.ExternalID)
	assert.NoError(t, s.Delete(context.Background(), ""))
}
