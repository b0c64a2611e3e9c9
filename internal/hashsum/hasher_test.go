package hashsum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestAlgorithmForDigestLength(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		want    Algorithm
		wantErr bool
	}{
		{"md5", 32, MD5, false},
		{"sha1", 40, SHA1, false},
		{"sha224", 56, SHA224, false},
		{"sha256", 64, SHA256, false},
		{"sha384", 96, SHA384, false},
		{"sha512", 128, SHA512, false},
		{"unrecognized", 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AlgorithmForDigestLength(tt.length)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasherMatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	h := New(MD5)
	h.Update(data)

	sum := md5.Sum(data)
	if h.Finalize() != hex.EncodeToString(sum[:]) {
		t.Fatalf("md5 mismatch")
	}
}

func TestHasherSplitUpdatesMatchSingleShot(t *testing.T) {
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	for _, alg := range []Algorithm{MD5, SHA1, SHA224, SHA256, SHA384, SHA512} {
		whole := New(alg)
		whole.Update(data)
		wholeDigest := whole.Finalize()

		split := New(alg)
		split.Update(data[:10])
		split.Update(data[10:20])
		split.Update(data[20:])
		if got := split.Finalize(); got != wholeDigest {
			t.Errorf("algorithm %v: split digest %s != whole digest %s", alg, got, wholeDigest)
		}
	}
}

func TestHasherVerify(t *testing.T) {
	data := []byte("hello\n")
	sum := sha256.Sum256(data)
	expected := hex.EncodeToString(sum[:])

	h, err := NewFromChecksum(expected)
	if err != nil {
		t.Fatalf("NewFromChecksum: %v", err)
	}
	h.Update(data)
	if err := h.Verify(expected); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	h2, _ := NewFromChecksum(expected)
	h2.Update(data)
	badExpected := "0" + expected[1:]
	if err := h2.Verify(badExpected); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestNewFromChecksumUnrecognizedSize(t *testing.T) {
	if _, err := NewFromChecksum("deadbeef"); err == nil {
		t.Fatalf("expected UnrecognizedSize error")
	}
}

func TestEmptyStringDigests(t *testing.T) {
	h := New(SHA256)
	if got, want := h.Finalize(), hex.EncodeToString(func() []byte { s := sha256.Sum256(nil); return s[:] }()); got != want {
		t.Fatalf("empty digest got %s want %s", got, want)
	}
}
