package testutil

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	p := NewProject(t, FileTree{
		"app.js":          "console.log(1)",
		"css/site.css":    "body{}",
		"img/icons/a.svg": "<svg/>",
	})

	assert.Equal(t, "/project/src", p.SourceDir())
	assert.Equal(t, "/project/dist", p.OutputDir())
	AssertFileContent(t, p.Fs, "/project/src/css/site.css", "body{}")
	AssertFileExists(t, p.Fs, "/project/src/img/icons/a.svg")

	p.RemoveFile("app.js")
	AssertNoFile(t, p.Fs, "/project/src/app.js")
}

func TestOutputFiles(t *testing.T) {
	p := NewProject(t, nil)
	require.NoError(t, p.Fs.MkdirAll(filepath.Join(p.OutputDir(), "css"), 0o755))
	require.NoError(t, afero.WriteFile(p.Fs, filepath.Join(p.OutputDir(), "css", "b.css"), []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(p.Fs, filepath.Join(p.OutputDir(), "a.js"), []byte("a"), 0o644))

	assert.Equal(t, []string{"a.js", "css/b.css"}, p.OutputFiles())
	assert.Equal(t, "b", p.ReadOutput("css/b.css"))
}

func TestErrorFs(t *testing.T) {
	p := NewProject(t, FileTree{"a.txt": "a", "b.txt": "b"})
	boom := errors.New("boom")
	fs := NewErrorFs(p.Fs).FailOpen("/project/src/a.txt", boom)

	_, err := afero.ReadFile(fs, "/project/src/a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	data, err := afero.ReadFile(fs, "/project/src/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
	assert.Equal(t, 1, fs.Opens("/project/src/b.txt"))
}

func TestChecksum(t *testing.T) {
	assert.Len(t, Checksum("x"), 16)
	assert.Equal(t, Checksum("x")[:7], ShortChecksum("x", 7))
	assert.NotEqual(t, Checksum("x"), Checksum("y"))
}
