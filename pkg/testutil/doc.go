// Package testutil provides in-memory project fixtures for bundler tests.
//
// Key components:
//   - Project: a source tree on an afero MemMapFs with src and dist roots
//   - FileTree: inline declaration of source files
//   - ErrorFs: an afero.Fs wrapper that injects read failures
//
// Usage guidelines:
//   - Define test data inline with FileTree, not in external files
//   - Each test builds its own Project; nothing is shared between tests
package testutil
