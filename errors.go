package rangedl

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of failures the engine can report.
type ErrorKind int

const (
	// ErrURLParse means the input string is not a valid absolute URL.
	ErrURLParse ErrorKind = iota
	// ErrContentLength means preflight succeeded but advertised no length.
	ErrContentLength
	// ErrRequestError means a transport-level failure survived retries.
	ErrRequestError
	// ErrReqwestError means an error occurred while streaming a response body.
	ErrReqwestError
	// ErrFileError means a filesystem operation (create, seek, write, sync, dup) failed.
	ErrFileError
	// ErrInvalidThreads means a thread count outside [1, 255] was requested.
	ErrInvalidThreads
	// ErrInvalidChecksum means the computed digest didn't match the expected one.
	ErrInvalidChecksum
	// ErrSaveError means the background save step failed or was cancelled.
	ErrSaveError
	// ErrUnsupportedFileName means a caller supplied a filename alongside a multi-entry archive format.
	ErrUnsupportedFileName
	// ErrArchiveError means decompression/extraction failed (wraps an internal/archive.Error).
	ErrArchiveError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrURLParse:
		return "URLParse"
	case ErrContentLength:
		return "ContentLength"
	case ErrRequestError:
		return "RequestError"
	case ErrReqwestError:
		return "ReqwestError"
	case ErrFileError:
		return "FileError"
	case ErrInvalidThreads:
		return "InvalidThreads"
	case ErrInvalidChecksum:
		return "InvalidChecksum"
	case ErrSaveError:
		return "SaveError"
	case ErrUnsupportedFileName:
		return "UnsupportedFileName"
	case ErrArchiveError:
		return "ArchiveError"
	default:
		return "Unknown"
	}
}

// Error is the engine's error type: a closed Kind plus the underlying cause.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// IsKind reports whether err is a *Error of the given kind, unwrapping as needed.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
