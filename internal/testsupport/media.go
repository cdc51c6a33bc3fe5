package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WAV builds a minimal mono 16-bit PCM payload declaring byteRate and
// dataLen bytes of silence.
func WAV(byteRate, dataLen uint32) []byte {
	buf := make([]byte, 44+dataLen)
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], 36+dataLen)
	copy(buf[8:], "WAVEfmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[24:], byteRate/2)
	binary.LittleEndian.PutUint32(buf[28:], byteRate)
	binary.LittleEndian.PutUint16(buf[32:], 2)
	binary.LittleEndian.PutUint16(buf[34:], 16)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], dataLen)
	return buf
}

// MediaStub returns a payload whose leading bytes match the format implied
// by ext (".mp4", ".png", ".otf", ".ttf", ".wav"), padded with zeros.
// Unknown extensions yield plain text.
func MediaStub(ext string) []byte {
	var magic []byte
	switch strings.ToLower(ext) {
	case ".mp4", ".m4v", ".mov":
		magic = []byte{0, 0, 0, 24}
		magic = append(magic, "ftypisom\x00\x00\x02\x00isommp41"...)
	case ".png":
		magic = []byte("\x89PNG\r\n\x1a\n")
	case ".otf":
		magic = []byte("OTTO")
	case ".ttf":
		magic = []byte{0, 1, 0, 0}
	case ".wav":
		return WAV(32000, 32)
	default:
		return []byte("hookclip test fixture\n")
	}
	return append(magic, make([]byte, 64)...)
}

// WriteMedia writes MediaStub for path's extension, creating parent
// directories.
func WriteMedia(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, MediaStub(filepath.Ext(path)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
