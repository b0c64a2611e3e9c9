package rangedl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/guiyumin/rangedl/internal/chunkset"
)

func TestIsKindMatches(t *testing.T) {
	err := newError(ErrFileError, fmt.Errorf("disk full"))
	if !IsKind(err, ErrFileError) {
		t.Fatal("expected IsKind to match ErrFileError")
	}
	if IsKind(err, ErrInvalidChecksum) {
		t.Fatal("expected IsKind not to match a different kind")
	}
}

func TestIsKindUnwraps(t *testing.T) {
	inner := newError(ErrContentLength, errors.New("missing header"))
	wrapped := fmt.Errorf("preflight failed: %w", inner)
	if !IsKind(wrapped, ErrContentLength) {
		t.Fatal("expected IsKind to unwrap through fmt.Errorf")
	}
}

func TestIsKindRejectsForeignErrors(t *testing.T) {
	if IsKind(errors.New("plain error"), ErrFileError) {
		t.Fatal("expected IsKind to reject a non-*Error")
	}
}

func TestClassifyDownloadErrorDistinguishesStreamFromTransport(t *testing.T) {
	streamErr := &chunkset.StreamError{Err: errors.New("body read failed")}
	if got := classifyDownloadError(streamErr); got != ErrReqwestError {
		t.Fatalf("got %v, want ErrReqwestError for a *chunkset.StreamError", got)
	}
	wrapped := fmt.Errorf("chunk failed: %w", streamErr)
	if got := classifyDownloadError(wrapped); got != ErrReqwestError {
		t.Fatalf("got %v, want ErrReqwestError for a wrapped *chunkset.StreamError", got)
	}

	transportErr := &chunkset.TransportError{Err: errors.New("dial failed")}
	if got := classifyDownloadError(transportErr); got != ErrRequestError {
		t.Fatalf("got %v, want ErrRequestError for a *chunkset.TransportError", got)
	}
	if got := classifyDownloadError(errors.New("some other failure")); got != ErrRequestError {
		t.Fatalf("got %v, want ErrRequestError as the default classification", got)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := newError(ErrInvalidChecksum, errors.New("digest mismatch"))
	want := "InvalidChecksum: digest mismatch"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
