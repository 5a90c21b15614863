// Package manifest assembles the outputs of a build into an immutable
// manifest and writes it out.
//
// A Builder collects entries single-threaded after the transform phase and
// rejects a second source claiming an output path. Build sorts everything by
// path, so identical inputs always give identical manifests.
package manifest
