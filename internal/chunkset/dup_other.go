//go:build !unix

package chunkset

import "os"

// dupFile has no cheap equivalent to POSIX dup on this platform; reopen the
// same path for read-write instead, giving each chunk an independent OS-level
// handle and cursor — same contract as the unix dup, different mechanism.
// See §9's design note: "implementers on platforms without cheap handle
// duplication should serialise the save step" — reopening serves the same
// end without forcing serialization.
func dupFile(f *os.File) (*os.File, error) {
	return os.OpenFile(f.Name(), os.O_WRONLY, 0)
}
