package manifest

import (
	"bytes"
	"sort"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/naming"
	"github.com/arthur-debert/bundler/pkg/types"
)

type part struct {
	source  string
	content []byte
}

// Builder collects manifest entries. It is not safe for concurrent use.
type Builder struct {
	entries  map[string]Entry
	combined map[string][]part
	inline   map[string]InlineAsset
	tracker  *naming.Tracker
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		entries:  map[string]Entry{},
		combined: map[string][]part{},
		inline:   map[string]InlineAsset{},
		tracker:  naming.NewTracker(),
	}
}

// Add records content as the output path produced by source. A path already
// produced by another source, or reserved for a combined asset, is an
// OutputCollisionError.
func (b *Builder) Add(path, source string, content []byte) error {
	if parts, ok := b.combined[path]; ok {
		return combinedCollision(path, source, parts)
	}
	if err := b.tracker.Claim(path, source); err != nil {
		return err
	}
	b.entries[path] = Entry{
		Path:    path,
		Content: content,
		Descriptor: Descriptor{
			ContentHash: types.HashContent(content),
			SizeBytes:   int64(len(content)),
			SourcePath:  source,
		},
	}
	return nil
}

// Append contributes content from source to the combined asset at path.
// Contributions are concatenated in source path order when the manifest is
// built.
func (b *Builder) Append(path, source string, content []byte) error {
	if owner, ok := b.tracker.Owner(path); ok {
		return &errors.OutputCollisionError{Path: path, Sources: sortedSources(owner, source)}
	}
	b.combined[path] = append(b.combined[path], part{source: source, content: content})
	return nil
}

// AddInline records that source was embedded as a data URI
func (b *Builder) AddInline(source, dataURI string, content []byte) {
	b.inline[source] = InlineAsset{
		SourcePath:  source,
		DataURI:     dataURI,
		ContentHash: types.HashContent(content),
		SizeBytes:   int64(len(content)),
	}
}

// Len returns the number of outputs recorded so far
func (b *Builder) Len() int {
	return len(b.entries) + len(b.combined)
}

// Build returns the manifest of everything recorded so far. The builder
// stays usable; later additions do not affect returned manifests.
func (b *Builder) Build() *Manifest {
	entries := make([]Entry, 0, b.Len())
	for _, e := range b.entries {
		entries = append(entries, e)
	}
	for path, parts := range b.combined {
		entries = append(entries, combine(path, parts))
	}
	inline := make([]InlineAsset, 0, len(b.inline))
	for _, a := range b.inline {
		inline = append(inline, a)
	}
	return newManifest(entries, inline)
}

func combine(path string, parts []part) Entry {
	sorted := append([]part(nil), parts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].source < sorted[j].source })

	var buf bytes.Buffer
	sources := make([]string, 0, len(sorted))
	for _, p := range sorted {
		buf.Write(p.content)
		if n := len(p.content); n > 0 && p.content[n-1] != '\n' {
			buf.WriteByte('\n')
		}
		sources = append(sources, p.source)
	}
	content := buf.Bytes()

	return Entry{
		Path:    path,
		Content: content,
		Descriptor: Descriptor{
			ContentHash: types.HashContent(content),
			SizeBytes:   int64(len(content)),
			SourcePath:  sources[0],
			Sources:     sources,
		},
	}
}

func combinedCollision(path, source string, parts []part) error {
	sources := []string{source}
	for _, p := range parts {
		sources = append(sources, p.source)
	}
	return &errors.OutputCollisionError{Path: path, Sources: sortedSources(sources...)}
}

func sortedSources(sources ...string) []string {
	out := append([]string(nil), sources...)
	sort.Strings(out)
	return out
}
