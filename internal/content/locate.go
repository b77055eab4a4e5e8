// Package content finds the documents a run operates on.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/mdsummary/internal/fs"
)

// DefaultDir is the content root relative to the working directory.
const DefaultDir = "src/content"

// ErrNotDirectory is returned when the content root exists but is not a
// directory.
var ErrNotDirectory = errors.New("content root is not a directory")

// documentNames are matched case-insensitively.
var documentNames = []string{"index.md", "index.mdx"}

// IsDocument reports whether name is a document file name.
func IsDocument(name string) bool {
	for _, n := range documentNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}

	return false
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// Locate returns the paths of all documents below root in walk order.
//
// A root that is missing, not a directory or unreadable is an error.
// Subdirectories that cannot be read are passed to onErr (when non-nil) and
// skipped.
func Locate(fsys fs.FS, root string, onErr func(path string, err error)) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read content root: %w", err)
	}

	paths := []string{}
	paths = walk(fsys, root, entries, paths, onErr)

	return paths, nil
}

func walk(fsys fs.FS, dir string, entries []os.DirEntry, paths []string, onErr func(string, error)) []string {
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if skipDir(entry.Name()) {
				continue
			}

			children, err := fsys.ReadDir(path)
			if err != nil {
				if onErr != nil {
					onErr(path, err)
				}

				continue
			}

			paths = walk(fsys, path, children, paths, onErr)

			continue
		}

		if IsDocument(entry.Name()) {
			paths = append(paths, path)
		}
	}

	return paths
}
