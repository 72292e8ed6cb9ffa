package builder

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid, got %q: %v", id, err)
	}
	if NewID() == id {
		t.Fatalf("expected distinct ids")
	}
}

func TestGenerateFilename(t *testing.T) {
	gen := func() string { return "fixed" }
	cases := map[string]struct {
		file *LocalFile
		want string
	}{
		"lowercases extension": {file: &LocalFile{Name: "Photo.JPG"}, want: "fixed.jpg"},
		"missing extension":    {file: &LocalFile{Name: "clip"}, want: "fixed.bin"},
		"nil file":             {file: nil, want: "fixed.bin"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := GenerateFilename(gen, tc.file); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	got := GenerateFilename(nil, &LocalFile{Name: "a.png"})
	if !strings.HasSuffix(got, ".png") {
		t.Fatalf("expected png suffix, got %s", got)
	}
}

func TestLocalFileMimeTypeFallback(t *testing.T) {
	if got := (&LocalFile{}).MimeType(); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %s", got)
	}
	if got := (&LocalFile{ContentType: "image/png"}).MimeType(); got != "image/png" {
		t.Fatalf("expected declared type, got %s", got)
	}
}
