package types

import (
	"github.com/arthur-debert/bundler/pkg/errors"
)

// Output is one artifact produced by a transform. The primary output has an
// empty Name; named outputs are emitted next to it with Name as suffix.
type Output struct {
	Name    string
	Content []byte
	// Inline marks a primary output that is embedded as DataURI instead of
	// being written as a file
	Inline  bool
	DataURI string
}

// TransformResult is what running a chain over one file produces
type TransformResult struct {
	Outputs      []Output
	Dependencies []string
	Errors       []error
}

// Primary returns the primary output, or nil if there is none
func (r *TransformResult) Primary() *Output {
	for i := range r.Outputs {
		if r.Outputs[i].Name == "" {
			return &r.Outputs[i]
		}
	}
	return nil
}

// Named returns the secondary outputs in the order they were produced
func (r *TransformResult) Named() []Output {
	var named []Output
	for _, o := range r.Outputs {
		if o.Name != "" {
			named = append(named, o)
		}
	}
	return named
}

// FatalErrors returns the errors that fail the build
func (r *TransformResult) FatalErrors() []error {
	var fatal []error
	for _, err := range r.Errors {
		if IsFatal(err) {
			fatal = append(fatal, err)
		}
	}
	return fatal
}

// Warnings returns the recoverable errors
func (r *TransformResult) Warnings() []error {
	var warnings []error
	for _, err := range r.Errors {
		if !IsFatal(err) {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Failed reports whether any fatal error was recorded
func (r *TransformResult) Failed() bool {
	return len(r.FatalErrors()) > 0
}

// Size returns the total number of output bytes
func (r *TransformResult) Size() int64 {
	var n int64
	for _, o := range r.Outputs {
		n += int64(len(o.Content))
	}
	return n
}

// IsFatal reports whether err fails the build. Transform errors carry their
// own classification; any other error is fatal.
func IsFatal(err error) bool {
	var te *errors.TransformError
	if errors.As(err, &te) {
		return te.Fatal
	}
	return true
}
