// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging downscales uploaded images to fit a bounding box. It is
// pure Go: decoding covers JPEG, PNG, GIF and WebP; output is JPEG for JPEG
// input and PNG otherwise, since there is no pure-Go WebP encoder.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the decoded size of an upload, guarding against
// decompression bombs that are small on the wire.
const MaxPixels = 40_000_000

// JPEGQuality is the encoder quality for resized JPEGs.
const JPEGQuality = 85

var (
	// ErrUnsupported is returned for data that is not a decodable image.
	ErrUnsupported = errors.New("imaging: unsupported image format")
	// ErrTooLarge is returned when the image exceeds MaxPixels.
	ErrTooLarge = errors.New("imaging: image dimensions too large")
)

// Result is an image ready for storage.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// FitWithin returns data unchanged when the image already fits in
// maxW x maxH, and otherwise a downscaled copy preserving the aspect
// ratio. Images are never upscaled.
func FitWithin(data []byte, maxW, maxH int) (*Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupported
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, ErrTooLarge
	}

	if cfg.Width <= maxW && cfg.Height <= maxH {
		return &Result{
			Data:        data,
			ContentType: contentType(format),
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}

	w, h := fitDims(cfg.Width, cfg.Height, maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	out := "image/png"
	if format == "jpeg" {
		out = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return &Result{Data: buf.Bytes(), ContentType: out, Width: w, Height: h, Resized: true}, nil
}

// fitDims scales w x h down to fit maxW x maxH, keeping each side >= 1.
func fitDims(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW against h/maxH without floating point.
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}

func contentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
