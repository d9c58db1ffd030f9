package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSClient stores objects in a Google Cloud Storage bucket.
type GCSClient struct {
	client *gcs.Client
	bucket string
}

// NewGCS creates a GCS client. credentialsFile may be empty to use
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string, opts ...option.ClientOption) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSClient{client: client, bucket: bucket}, nil
}

// Put uploads an object.
func (c *GCSClient) Put(ctx context.Context, key, contentType string, body io.Reader, _ int64) error {
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs upload %s/%s: %w", c.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Delete removes an object. Deleting a missing key succeeds.
func (c *GCSClient) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// URL returns the public URL of an object.
func (c *GCSClient) URL(key string) string {
	return "https://storage.googleapis.com/" + c.bucket + "/" + key
}

// Close releases the underlying client.
func (c *GCSClient) Close() error {
	return c.client.Close()
}
