package s3

import "testing"

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix, file, want string
	}{
		{"photos_watermark", "a.jpg", "photos_watermark/a.jpg"},
		{"", "a.jpg", "a.jpg"},
		{"x/y", "b.png", "x/y/b.png"},
	}

	for _, tt := range tests {
		if got := ObjectName(tt.prefix, tt.file); got != tt.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", tt.prefix, tt.file, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("a.png"); got != "image/png" {
		t.Errorf("png content type = %q", got)
	}
	if got := contentType("a.jpg"); got != "image/jpeg" {
		t.Errorf("jpg content type = %q", got)
	}
	if got := contentType("a.unknownext"); got != "application/octet-stream" {
		t.Errorf("fallback content type = %q", got)
	}
}
