package vreader

import (
	"bytes"
	"io"
	"testing"
)

func slicesOf(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func TestReadConcatenates(t *testing.T) {
	r := New(slicesOf("hello, ", "", "world", "!"))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if want := "hello, world!"; string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadEmptySlices(t *testing.T) {
	r := New(slicesOf("", "", ""))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestSeekStart(t *testing.T) {
	r := New(slicesOf("abc", "def", "ghi"))
	pos, err := r.Seek(4, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 4 {
		t.Fatalf("pos = %d, want 4", pos)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "efghi" {
		t.Fatalf("got %q, want %q", rest, "efghi")
	}
}

func TestSeekEnd(t *testing.T) {
	r := New(slicesOf("abcdefghi"))
	pos, err := r.Seek(-3, io.SeekEnd)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 6 {
		t.Fatalf("pos = %d, want 6", pos)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "ghi" {
		t.Fatalf("got %q, want %q", rest, "ghi")
	}
}

func TestSeekCurrent(t *testing.T) {
	r := New(slicesOf("0123456789"))
	buf := make([]byte, 3)
	r.Read(buf) // advance to offset 3
	pos, err := r.Seek(2, io.SeekCurrent)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 5 {
		t.Fatalf("pos = %d, want 5", pos)
	}
}

func TestSeekBeyondLengthFails(t *testing.T) {
	r := New(slicesOf("abc"))
	if _, err := r.Seek(100, io.SeekStart); err == nil {
		t.Fatalf("expected error seeking beyond length")
	}
}

func TestSeekAcrossSliceBoundary(t *testing.T) {
	r := New(slicesOf("aa", "bb", "cc"))
	if _, err := r.Seek(3, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "bcc" {
		t.Fatalf("got %q, want %q", rest, "bcc")
	}
}

func TestNoCopySharesUnderlyingArray(t *testing.T) {
	backing := []byte("mutable-payload")
	r := New([][]byte{backing})
	// Mutate the caller's slice after construction; a reader that shares the
	// backing array (rather than copying it) must observe the change.
	backing[0] = 'M'
	buf := make([]byte, len(backing))
	n, _ := r.Read(buf)
	if n != len(backing) {
		t.Fatalf("short read: %d", n)
	}
	if !bytes.Equal(buf, backing) {
		t.Fatalf("contents mismatch")
	}
	if buf[0] != 'M' {
		t.Fatalf("reader did not observe a write to the shared backing array")
	}
}
