package manifest

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/bundler/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Version of the encoded manifest document
const Version = 1

// Descriptor describes one output for packaging steps
type Descriptor struct {
	ContentHash string `json:"contentHash" yaml:"contentHash"`
	SizeBytes   int64  `json:"sizeBytes" yaml:"sizeBytes"`
	SourcePath  string `json:"sourcePath" yaml:"sourcePath"`
	// Sources lists every contributor of a combined asset
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Entry is an output file and its bytes
type Entry struct {
	Path    string
	Content []byte
	Descriptor
}

// InlineAsset is a source embedded as a data URI rather than written out
type InlineAsset struct {
	SourcePath  string `json:"-" yaml:"-"`
	DataURI     string `json:"dataURI" yaml:"dataURI"`
	ContentHash string `json:"contentHash" yaml:"contentHash"`
	SizeBytes   int64  `json:"sizeBytes" yaml:"sizeBytes"`
}

// Manifest is the immutable result of a build. Entries are sorted by path,
// inline assets by source path.
type Manifest struct {
	entries []Entry
	index   map[string]int
	inline  []InlineAsset
}

// Len returns the number of output files
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries in path order
func (m *Manifest) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// Paths returns the output paths in order
func (m *Manifest) Paths() []string {
	if m == nil {
		return nil
	}
	paths := make([]string, len(m.entries))
	for i, e := range m.entries {
		paths[i] = e.Path
	}
	return paths
}

// Get returns the entry for an output path
func (m *Manifest) Get(path string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	i, ok := m.index[path]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Inline returns the inlined assets in source path order
func (m *Manifest) Inline() []InlineAsset {
	if m == nil {
		return nil
	}
	return append([]InlineAsset(nil), m.inline...)
}

// InlineFor returns the inline asset produced from a source path
func (m *Manifest) InlineFor(source string) (InlineAsset, bool) {
	for _, a := range m.Inline() {
		if a.SourcePath == source {
			return a, true
		}
	}
	return InlineAsset{}, false
}

// TotalSize returns the sum of output file sizes
func (m *Manifest) TotalSize() int64 {
	var n int64
	for _, e := range m.Entries() {
		n += e.SizeBytes
	}
	return n
}

// document is the encoded form of a manifest
type document struct {
	Version int                    `json:"version" yaml:"version"`
	Files   map[string]Descriptor  `json:"files" yaml:"files"`
	Inline  map[string]InlineAsset `json:"inline,omitempty" yaml:"inline,omitempty"`
}

func (m *Manifest) document() document {
	doc := document{Version: Version, Files: map[string]Descriptor{}}
	for _, e := range m.Entries() {
		doc.Files[e.Path] = e.Descriptor
	}
	if inline := m.Inline(); len(inline) > 0 {
		doc.Inline = map[string]InlineAsset{}
		for _, a := range inline {
			doc.Inline[a.SourcePath] = a
		}
	}
	return doc
}

// EncodeJSON returns the indented JSON manifest document. Map keys are
// sorted, so the encoding is deterministic.
func (m *Manifest) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m.document(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	return append(data, '\n'), nil
}

// EncodeYAML returns the manifest document as YAML
func (m *Manifest) EncodeYAML() ([]byte, error) {
	data, err := yaml.Marshal(m.document())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	return data, nil
}

func newManifest(entries []Entry, inline []InlineAsset) *Manifest {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	sort.Slice(inline, func(i, j int) bool { return inline[i].SourcePath < inline[j].SourcePath })

	m := &Manifest{entries: entries, inline: inline, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		m.index[e.Path] = i
	}
	return m
}
