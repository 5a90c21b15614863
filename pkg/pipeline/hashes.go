package pipeline

import (
	"path"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/spf13/afero"
)

// hashIndex reads source files for one run and remembers their content
// hashes, so dependency checks do not read a file twice
type hashIndex struct {
	fs   afero.Fs
	root string

	mu     sync.Mutex
	hashes map[string]string
}

func newHashIndex(fs afero.Fs, root string) *hashIndex {
	return &hashIndex{fs: fs, root: root, hashes: map[string]string{}}
}

// read loads the source file at the root relative path rel
func (h *hashIndex) read(rel string) (*types.SourceFile, error) {
	data, err := afero.ReadFile(h.fs, filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	file := types.NewSourceFile(rel, data)
	h.mu.Lock()
	h.hashes[file.Path] = file.Hash
	h.mu.Unlock()
	return file, nil
}

// lookup returns the current hash of a dependency, reading it when this run
// has not seen it yet
func (h *hashIndex) lookup(rel string) (string, bool) {
	rel = path.Clean(rel)
	h.mu.Lock()
	hash, ok := h.hashes[rel]
	h.mu.Unlock()
	if ok {
		return hash, true
	}

	file, err := h.read(rel)
	if err != nil {
		return "", false
	}
	return file.Hash, true
}
