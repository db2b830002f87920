package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCappedWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedWriter: %v", err)
	}
	defer w.Close()

	// Force the cap low so the test stays small.
	w.maxBytes = 64

	line := bytes.Repeat([]byte("a"), 30)
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 64 {
		t.Fatalf("file size = %d, want <= 64 after truncation", info.Size())
	}
}

func TestCappedWriterAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	w2, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer w2.Close()
	if _, err := w2.Write([]byte("second\n")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("file contents = %q", data)
	}
}
