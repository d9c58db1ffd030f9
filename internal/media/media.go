// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media is the image-hosting adapter. It validates uploads,
// downscales them, names the stored object and returns the one result
// shape callers see: models.Image{ExternalID, URL}.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloghub/internal/imaging"
	"bloghub/internal/models"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 5 << 20
	// MaxDimension bounds both sides of a stored image.
	MaxDimension = 500
)

// Upload rejections the client can correct.
var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("image must be 5 MB or smaller")
	ErrEmpty    = errors.New("uploaded file is empty")
)

// allowedTypes maps sniffed MIME types to stored file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Backend is an object store: S3, GCS or the local disk.
type Backend interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Service uploads and deletes images through a Backend.
type Service struct {
	backend Backend
	log     *zap.Logger
}

// NewService creates a media service.
func NewService(backend Backend, log *zap.Logger) *Service {
	return &Service{backend: backend, log: log}
}

// Upload validates data, fits it within MaxDimension and stores it under
// folder. Validation failures are returned as ErrNotImage, ErrTooLarge or
// ErrEmpty; backend failures are wrapped.
func (s *Service) Upload(ctx context.Context, data []byte, folder string) (*models.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	if _, ok := allowedTypes[http.DetectContentType(data)]; !ok {
		return nil, ErrNotImage
	}

	img, err := imaging.FitWithin(data, MaxDimension, MaxDimension)
	if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
		return nil, ErrNotImage
	}
	if err != nil {
		return nil, fmt.Errorf("process image: %w", err)
	}

	ext, ok := allowedTypes[img.ContentType]
	if !ok {
		ext = ".bin"
	}
	key := uuid.NewString() + ext
	if folder != "" {
		key = folder + "/" + key
	}

	if err := s.backend.Put(ctx, key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.log.Info("image uploaded",
		zap.String("key", key),
		zap.String("type", img.ContentType),
		zap.String("size", models.HumanSize(int64(len(img.Data)))),
		zap.Bool("resized", img.Resized),
	)
	return &models.Image{ExternalID: key, URL: s.backend.URL(key)}, nil
}

// Delete removes an image by external id. An empty id is a no-op.
func (s *Service) Delete(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, externalID); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// RejectionMessage returns the client-facing text for an upload
// rejection, or "" if err is not one.
func RejectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotImage):
		return "Only image files are allowed"
	case errors.Is(err, ErrTooLarge):
		return "Image must be 5 MB or smaller"
	case errors.Is(err, ErrEmpty):
		return "Uploaded file is empty"
	}
	return ""
}

// IsRejection reports whether err is a client-correctable upload rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotImage) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrEmpty)
}
