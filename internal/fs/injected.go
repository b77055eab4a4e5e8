package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Op names an [FS] operation that [Injected] can fail.
type Op string

// Operations that can be failed with [Injected.Fail].
const (
	OpReadFile  Op = "read"
	OpWriteFile Op = "write"
	OpReadDir   Op = "readdir"
	OpStat      Op = "stat"
)

// InjectedError marks an error as intentionally injected by [Injected].
//
// It wraps the underlying error so errors.Is/As continue to work.
// Injected returns it inside a *fs.PathError, the same shape the [os]
// package uses, so callers see realistic errors.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by
// [Injected]. Returns false if err is nil.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Injected wraps an [FS] and fails configured operations on configured
// paths. Everything else passes through to the wrapped filesystem.
//
// It is safe for concurrent use, which the worker pool tests rely on.
type Injected struct {
	base FS

	mu     sync.Mutex
	faults map[faultKey]error
	calls  map[faultKey]int
}

type faultKey struct {
	op   Op
	path string
}

// NewInjected returns an [Injected] filesystem delegating to base.
func NewInjected(base FS) *Injected {
	return &Injected{
		base:   base,
		faults: make(map[faultKey]error),
		calls:  make(map[faultKey]int),
	}
}

// Fail makes every future op on path return err.
func (f *Injected) Fail(op Op, path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.faults[faultKey{op: op, path: filepath.Clean(path)}] = err
}

// Calls returns how many times op was attempted on path.
func (f *Injected) Calls(op Op, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[faultKey{op: op, path: filepath.Clean(path)}]
}

// ReadFile fails with the injected error or delegates.
func (f *Injected) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpReadFile, path); err != nil {
		return nil, err
	}

	return f.base.ReadFile(path)
}

// WriteFileAtomic fails with the injected error or delegates.
func (f *Injected) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWriteFile, path); err != nil {
		return err
	}

	return f.base.WriteFileAtomic(path, data, perm)
}

// ReadDir fails with the injected error or delegates.
func (f *Injected) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.check(OpReadDir, path); err != nil {
		return nil, err
	}

	return f.base.ReadDir(path)
}

// Stat fails with the injected error or delegates.
func (f *Injected) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}

	return f.base.Stat(path)
}

func (f *Injected) check(op Op, path string) error {
	key := faultKey{op: op, path: filepath.Clean(path)}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[key]++

	err, ok := f.faults[key]
	if !ok {
		return nil
	}

	return &iofs.PathError{Op: string(op), Path: path, Err: &InjectedError{Err: err}}
}

// Compile-time interface check.
var _ FS = (*Injected)(nil)
