package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Default fixture locations
const (
	DefaultRoot = "/project"
	SourceDir   = "src"
	OutputDir   = "dist"
)

// FileTree maps source relative paths to file contents
type FileTree map[string]string

// Project is a bundler project on an in-memory filesystem
type Project struct {
	t    *testing.T
	Fs   afero.Fs
	Root string
}

// NewProject creates a project under DefaultRoot and writes tree into its
// source directory
func NewProject(t *testing.T, tree FileTree) *Project {
	t.Helper()
	p := &Project{t: t, Fs: afero.NewMemMapFs(), Root: DefaultRoot}
	require.NoError(t, p.Fs.MkdirAll(p.SourceDir(), 0o755))
	p.WithFiles(tree)
	return p
}

// SourceDir returns the absolute source root
func (p *Project) SourceDir() string {
	return filepath.Join(p.Root, SourceDir)
}

// OutputDir returns the absolute output root
func (p *Project) OutputDir() string {
	return filepath.Join(p.Root, OutputDir)
}

// WithFiles writes every file of tree, creating parent directories
func (p *Project) WithFiles(tree FileTree) *Project {
	p.t.Helper()
	paths := make([]string, 0, len(tree))
	for rel := range tree {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	for _, rel := range paths {
		p.WriteFile(rel, tree[rel])
	}
	return p
}

// WriteFile writes a single source file
func (p *Project) WriteFile(rel, content string) {
	p.t.Helper()
	target := filepath.Join(p.SourceDir(), filepath.FromSlash(rel))
	require.NoError(p.t, p.Fs.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(p.t, afero.WriteFile(p.Fs, target, []byte(content), 0o644))
}

// RemoveFile deletes a source file
func (p *Project) RemoveFile(rel string) {
	p.t.Helper()
	require.NoError(p.t, p.Fs.Remove(filepath.Join(p.SourceDir(), filepath.FromSlash(rel))))
}

// ReadOutput returns the content of an emitted file
func (p *Project) ReadOutput(rel string) string {
	p.t.Helper()
	data, err := afero.ReadFile(p.Fs, filepath.Join(p.OutputDir(), filepath.FromSlash(rel)))
	require.NoError(p.t, err, "reading output %s", rel)
	return string(data)
}

// OutputFiles lists every emitted file relative to the output root, sorted
func (p *Project) OutputFiles() []string {
	p.t.Helper()
	var files []string
	err := afero.Walk(p.Fs, p.OutputDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.OutputDir(), path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(p.t, err)
	sort.Strings(files)
	return files
}
