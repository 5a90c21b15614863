package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/arthur-debert/bundler/internal/cli"
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectConfig = `
[output]
dir = "dist"

[[rules]]
name = "text"
pattern = "*.txt"
name_template = "[name].[hash:8].[ext]"

[[rules.chain]]
use = "raw"
`

// execute runs the root command with args and returns what it wrote to
// stdout. Logs and notices go to a separate stderr buffer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	var out, stderr bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bundler version dev")
}

func TestInitCmd(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, "init", "-C", root)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "bundler.toml"))
	assert.FileExists(t, filepath.Join(root, "bundler.toml"))

	_, err = execute(t, "init", "-C", root)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = execute(t, "init", "-C", root, "--force")
	require.NoError(t, err)
}

func TestRulesAndMatchCmds(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, "init", "-C", root)
	require.NoError(t, err)

	out, err := execute(t, "rules", "-C", root, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "1. scripts [normal]")
	assert.Contains(t, out, "5. compress [post]")

	out, err = execute(t, "match", "styles/site.css", "-C", root, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "styles/site.css:")
	assert.Contains(t, out, "  + styles")
	assert.Contains(t, out, "  + compress")
	assert.Contains(t, out, "  - scripts:")

	_, err = execute(t, "match", "-C", root)
	assert.Error(t, err)
}

func TestBuildCmd(t *testing.T) {
	root := newProject(t, map[string]string{
		"bundler.toml":    projectConfig,
		"src/notes.txt":   "hello",
		"src/img/dot.svg": "<svg/>",
	})

	out, err := execute(t, "build", "-C", root, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Summary struct {
			Files   int `json:"files"`
			Written int `json:"written"`
			Copied  int `json:"copied"`
		} `json:"summary"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Summary.Files)
	assert.Equal(t, 2, report.Summary.Written)
	assert.Equal(t, 1, report.Summary.Copied)
	assert.Equal(t, []string{"no rule matched img/dot.svg"}, report.Warnings)

	assert.FileExists(t, filepath.Join(root, "dist", "manifest.json"))
	assert.FileExists(t, filepath.Join(root, "dist", "img", "dot.svg"))

	entries, err := os.ReadDir(filepath.Join(root, "dist"))
	require.NoError(t, err)
	hashed := regexp.MustCompile(`^notes\.[0-9a-f]{8}\.txt$`)
	found := false
	for _, e := range entries {
		found = found || hashed.MatchString(e.Name())
	}
	assert.True(t, found, "expected a hashed notes output")
}

func TestBuildCmdOverrides(t *testing.T) {
	root := newProject(t, map[string]string{
		"bundler.toml":  projectConfig,
		"src/notes.txt": "hello",
	})

	_, err := execute(t, "build", "-C", root, "--format", "text", "--out", "public", "--workers", "1")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "public", "manifest.json"))

	dry := t.TempDir()
	_, err = execute(t, "build", "-C", root, "--format", "text", "--out", dry, "--dry-run")
	require.NoError(t, err)
	entries, err := os.ReadDir(dry)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildCmdReportsFailures(t *testing.T) {
	root := newProject(t, map[string]string{
		"bundler.toml":  projectConfig,
		"src/notes.txt": "hello",
		"src/other.md":  "# other",
	})

	out, err := execute(t, "build", "-C", root, "--format", "text", "--require-match")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildFailed))
	assert.Contains(t, out, "failed: other.md")
	assert.Contains(t, out, "no rule matched other.md")
	assert.NoFileExists(t, filepath.Join(root, "dist", "manifest.json"))
}

func TestInvalidFormat(t *testing.T) {
	root := newProject(t, map[string]string{"bundler.toml": projectConfig})

	_, err := execute(t, "rules", "-C", root, "--format", "html")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
