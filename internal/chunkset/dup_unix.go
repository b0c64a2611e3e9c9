//go:build unix

package chunkset

import (
	"os"
	"syscall"
)

// dupFile duplicates the file descriptor so each chunk's save step holds an
// independent cursor, per the ownership model in §3: "The output file handle
// is duplicated once per chunk ... so each chunk's save holds an independent
// cursor at a distinct offset."
func dupFile(f *os.File) (*os.File, error) {
	newFD, err := syscall.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(newFD), f.Name()), nil
}
