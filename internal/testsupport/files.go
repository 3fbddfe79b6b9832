package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// FakeMP3 returns an MPEG frame header followed by padding: enough for a file
// that carries no ID3 tag at all.
func FakeMP3() []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x64}, bytes.Repeat([]byte{0x00}, 412)...)
}

// FakeJPEG returns a JPEG start-of-image marker followed by filler bytes.
func FakeJPEG() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 64)...)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
