// Package types defines the data model shared across the build pipeline:
// rules and their phases, transform references, source files, transform
// results and their outputs.
package types
