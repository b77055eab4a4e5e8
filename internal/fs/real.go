package fs

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package with identical
// behavior and error semantics, except [Real.WriteFileAtomic] which
// writes through a temp file and rename.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data via [atomic.WriteFile]. An existing file keeps
// its mode; perm only applies when the file is created.
func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	_, statErr := r.Stat(path)
	created := os.IsNotExist(statErr)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}

	if created {
		return os.Chmod(path, perm)
	}

	return nil
}

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
