package testutil

import (
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

// AssertFileExists checks that path is a regular file on afs
func AssertFileExists(t testing.TB, afs afero.Fs, path string, msgAndArgs ...interface{}) bool {
	t.Helper()
	info, err := afs.Stat(path)
	if !assert.NoError(t, err, msgAndArgs...) {
		return false
	}
	return assert.Truef(t, info.Mode().IsRegular(), "%s is not a regular file", path)
}

// AssertNoFile checks that nothing, file or directory, exists at path
func AssertNoFile(t testing.TB, afs afero.Fs, path string, msgAndArgs ...interface{}) bool {
	t.Helper()
	_, err := afs.Stat(path)
	return assert.ErrorIs(t, err, fs.ErrNotExist, msgAndArgs...)
}

// AssertFileContent checks that path holds exactly expected
func AssertFileContent(t testing.TB, afs afero.Fs, path, expected string, msgAndArgs ...interface{}) bool {
	t.Helper()
	data, err := afero.ReadFile(afs, path)
	if !assert.NoError(t, err, msgAndArgs...) {
		return false
	}
	return assert.Equal(t, expected, string(data), msgAndArgs...)
}
