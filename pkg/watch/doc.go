// Package watch rebuilds a project when its sources change. Events are
// debounced into batches; a new batch cancels the build in flight and
// starts a fresh one once the canceled build has returned.
package watch
