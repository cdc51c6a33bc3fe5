package testsupport

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestMediaStubSniffsAsItsFormat(t *testing.T) {
	cases := map[string]string{
		".mp4": "video/mp4",
		".png": "image/png",
		".otf": "font/otf",
		".ttf": "font/ttf",
		".wav": "audio/wave",
	}
	for ext, want := range cases {
		if got := http.DetectContentType(MediaStub(ext)); got != want {
			t.Fatalf("MediaStub(%q) sniffed as %q, want %q", ext, got, want)
		}
	}
}

func TestWriteMediaCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "assets", "logo.png")
	WriteMedia(t, path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	if http.DetectContentType(data) != "image/png" {
		t.Fatalf("unexpected content %q", data[:8])
	}
}
