package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/spf13/afero"
)

// Store persists entries between processes
type Store interface {
	// Load returns the entry for key, or nil if there is none
	Load(key Key) (*Entry, error)
	Save(entry *Entry) error
	Delete(key Key) error
}

// DiskStore keeps one JSON document per entry under
// <root>/entries/<first two hash characters>/<digest>.json
type DiskStore struct {
	root string
	fs   afero.Fs
	now  func() time.Time
}

type storedOutput struct {
	Name    string `json:"name,omitempty"`
	Content []byte `json:"content"`
	Inline  bool   `json:"inline,omitempty"`
	DataURI string `json:"dataURI,omitempty"`
}

type storedWarning struct {
	Transform string `json:"transform"`
	Path      string `json:"path"`
	Message   string `json:"message"`
}

type storedEntry struct {
	Hash         string            `json:"hash"`
	Chain        string            `json:"chain"`
	Outputs      []storedOutput    `json:"outputs"`
	Dependencies []string          `json:"dependencies,omitempty"`
	DepHashes    map[string]string `json:"depHashes,omitempty"`
	Warnings     []storedWarning   `json:"warnings,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// OpenDiskStore creates the store directory under root on fs
func OpenDiskStore(fs afero.Fs, root string) (*DiskStore, error) {
	s := &DiskStore{root: root, fs: fs, now: time.Now}
	if err := fs.MkdirAll(s.entriesDir(), 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create cache directory %s", root)
	}
	return s, nil
}

func (s *DiskStore) entriesDir() string {
	return filepath.Join(s.root, "entries")
}

func (s *DiskStore) entryPath(key Key) string {
	digest := key.digest()
	return filepath.Join(s.entriesDir(), digest[:2], digest+".json")
}

// Load reads the entry for key
func (s *DiskStore) Load(key Key) (*Entry, error) {
	data, err := afero.ReadFile(s.fs, s.entryPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read cache entry")
	}

	var se storedEntry
	if err := json.Unmarshal(data, &se); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "corrupt cache entry")
	}
	// Chain digests can collide, the full key cannot
	if se.Hash != key.Hash || se.Chain != key.Chain {
		return nil, nil
	}

	res := &types.TransformResult{Dependencies: se.Dependencies}
	for _, o := range se.Outputs {
		res.Outputs = append(res.Outputs, types.Output{
			Name:    o.Name,
			Content: o.Content,
			Inline:  o.Inline,
			DataURI: o.DataURI,
		})
	}
	for _, w := range se.Warnings {
		res.Errors = append(res.Errors, &errors.TransformError{
			TransformID: w.Transform,
			Path:        w.Path,
			Cause:       fmt.Errorf("%s", w.Message),
		})
	}
	return &Entry{Key: key, Result: res, DepHashes: se.DepHashes, Size: res.Size()}, nil
}

// Save writes entry, replacing any previous version
func (s *DiskStore) Save(entry *Entry) error {
	se := storedEntry{
		Hash:         entry.Key.Hash,
		Chain:        entry.Key.Chain,
		Dependencies: entry.Result.Dependencies,
		DepHashes:    entry.DepHashes,
		CreatedAt:    s.now().UTC(),
	}
	for _, o := range entry.Result.Outputs {
		se.Outputs = append(se.Outputs, storedOutput(o))
	}
	for _, w := range entry.Result.Warnings() {
		sw := storedWarning{Message: w.Error()}
		var te *errors.TransformError
		if errors.As(w, &te) {
			sw.Transform, sw.Path = te.TransformID, te.Path
			if te.Cause != nil {
				sw.Message = te.Cause.Error()
			}
		}
		se.Warnings = append(se.Warnings, sw)
	}

	data, err := json.Marshal(se)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode cache entry")
	}

	path := s.entryPath(entry.Key)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create cache entry directory")
	}
	// Write then rename so readers never see a partial entry
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write cache entry")
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to store cache entry")
	}
	return nil
}

// Delete removes the entry for key if present
func (s *DiskStore) Delete(key Key) error {
	err := s.fs.Remove(s.entryPath(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to delete cache entry")
	}
	return nil
}

// Clear removes every stored entry
func (s *DiskStore) Clear() error {
	if err := s.fs.RemoveAll(s.entriesDir()); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to clear cache")
	}
	return s.fs.MkdirAll(s.entriesDir(), 0o755)
}
