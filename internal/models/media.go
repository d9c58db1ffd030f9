// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "fmt"

// Image references a file held by the media host. ExternalID is the host's
// stable identifier for the object and is what gets passed back to delete it.
type Image struct {
	ExternalID string `json:"public_id"`
	URL        string `json:"url"`
}

// ExternalIDOf returns img's external id, or "" when img is nil.
func ExternalIDOf(img *Image) string {
	if img == nil {
		return ""
	}
	return img.ExternalID
}

// HumanSize returns a human-readable file size string.
func HumanSize(sizeBytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case sizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/float64(mb))
	case sizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(sizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}
