package models

import "testing"

// TestHumanSize verifies the human-readable file size formatting
// across byte, kilobyte, and megabyte ranges.
func TestHumanSize(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes int64
		want      string
	}{
		{name: "zero bytes", sizeBytes: 0, want: "0 B"},
		{name: "one byte", sizeBytes: 1, want: "1 B"},
		{name: "just under 1 KB", sizeBytes: 1023, want: "1023 B"},
		{name: "exactly 1 KB", sizeBytes: 1024, want: "1 KB"},
		{name: "500 KB", sizeBytes: 500 * 1024, want: "500 KB"},
		{name: "exactly 1 MB", sizeBytes: 1024 * 1024, want: "1.0 MB"},
		{name: "5 MB upload limit", sizeBytes: 5 << 20, want: "5.0 MB"},
		{name: "2.5 MB", sizeBytes: 5 << 19, want: "2.5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanSize(tt.sizeBytes); got != tt.want {
				t.Errorf("HumanSize(%d) = %q, want %q", tt.sizeBytes, got, tt.want)
			}
		})
	}
}

func TestExternalIDOf(t *testing.T) {
	if got := ExternalIDOf(nil); got != "" {
		t.Errorf("nil image: got %q, want empty", got)
	}
	img := &Image{ExternalID: "blog-site/abc.jpg", URL: "https://cdn/blog-site/abc.jpg"}
	if got := ExternalIDOf(img); got != "blog-site/abc.jpg" {
		t.Errorf("got %q, want %q", got, "blog-site/abc.jpg")
	}
}
