package pipeline

import (
	"time"

	"github.com/arthur-debert/bundler/pkg/manifest"
)

// FileStat describes how one source file went through a run
type FileStat struct {
	Path string
	// Rules are the names of the applied rules in application order
	Rules    []string
	CacheHit bool
	// Copied is set for files no rule applied to
	Copied   bool
	Failed   bool
	Duration time.Duration
}

// Result is the outcome of a run. Manifest is nil when the build failed and
// partial manifests are disabled.
type Result struct {
	Manifest *manifest.Manifest
	// Files holds one entry per enumerated file, sorted by path
	Files []FileStat
	// Warnings are recoverable errors: unmatched files in copy-through mode,
	// recoverable transform errors and plugin failures
	Warnings []error
	// Written counts the output files written, not the manifest document
	Written  int
	Duration time.Duration
}

// CacheHits returns the number of files served from the transform cache
func (r *Result) CacheHits() int {
	n := 0
	for _, f := range r.Files {
		if f.CacheHit {
			n++
		}
	}
	return n
}

// FailedFiles returns the paths of files with fatal errors
func (r *Result) FailedFiles() []string {
	var failed []string
	for _, f := range r.Files {
		if f.Failed {
			failed = append(failed, f.Path)
		}
	}
	return failed
}
