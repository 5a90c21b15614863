package testutil

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ErrorFs wraps an afero.Fs and fails Open for selected paths
type ErrorFs struct {
	afero.Fs

	mu     sync.Mutex
	errors map[string]error
	opens  map[string]int
}

// NewErrorFs wraps fs
func NewErrorFs(fs afero.Fs) *ErrorFs {
	return &ErrorFs{Fs: fs, errors: map[string]error{}, opens: map[string]int{}}
}

// FailOpen makes every Open and OpenFile of path return err
func (e *ErrorFs) FailOpen(path string, err error) *ErrorFs {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors[filepath.Clean(path)] = err
	return e
}

// Opens returns how many times path was opened
func (e *ErrorFs) Opens(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opens[filepath.Clean(path)]
}

func (e *ErrorFs) check(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	name = filepath.Clean(name)
	e.opens[name]++
	return e.errors[name]
}

func (e *ErrorFs) Open(name string) (afero.File, error) {
	if err := e.check(name); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return e.Fs.Open(name)
}

func (e *ErrorFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := e.check(name); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return e.Fs.OpenFile(name, flag, perm)
}
