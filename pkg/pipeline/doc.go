// Package pipeline runs a build: it enumerates the source tree, matches
// every file against the rule set, transforms matched files on a worker pool
// through the shared transform cache, names and assembles the outputs into a
// manifest and writes them. Plugin callbacks fire around each phase.
//
// A run is fail-slow. Every file is transformed before the fatal errors of all
// files are reported together as a BuildFailedError. Configuration errors and
// output collisions are structural and are returned as soon as they are found.
package pipeline
