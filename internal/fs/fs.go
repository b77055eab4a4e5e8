// Package fs provides the filesystem abstraction used by the summary
// pipeline, so tests can inject failures without touching the real disk.
//
// The main types are:
//   - [FS]: interface for the operations the pipeline needs
//   - [Real]: production implementation using [os] and atomic writes
//   - [Injected]: testing implementation that fails chosen operations
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("src/content/post/index.md")
//	if err != nil {
//	    return err
//	}
//
//	return fsys.WriteFileAtomic("src/content/post/index.md", data, 0o644)
package fs

import (
	"os"
)

// FS defines the filesystem operations the pipeline performs.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces the file content in one step.
	// Uses a temp file + rename so readers never see a partial document.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)
}
