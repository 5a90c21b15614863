package types

import (
	"fmt"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashLength is the length of hex encoded content hashes
const HashLength = 16

// HashContent returns the hex encoded xxHash64 digest of data
func HashContent(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// SourceFile is a file read during a build pass. It is never mutated; a
// changed file produces a new SourceFile on the next pass.
type SourceFile struct {
	// Path is relative to the source root and uses forward slashes
	Path    string
	Content []byte
	Hash    string
}

// NewSourceFile creates a SourceFile and computes its content hash
func NewSourceFile(p string, content []byte) *SourceFile {
	return &SourceFile{
		Path:    path.Clean(strings.TrimPrefix(p, "./")),
		Content: content,
		Hash:    HashContent(content),
	}
}

// Name returns the base name without extension
func (f *SourceFile) Name() string {
	base := path.Base(f.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Ext returns the extension without the leading dot
func (f *SourceFile) Ext() string {
	return strings.TrimPrefix(path.Ext(f.Path), ".")
}

// Dir returns the directory of the file relative to the source root,
// or an empty string for files at the root
func (f *SourceFile) Dir() string {
	dir := path.Dir(f.Path)
	if dir == "." {
		return ""
	}
	return dir
}
