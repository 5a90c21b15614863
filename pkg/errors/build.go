package errors

import (
	"fmt"
	"strings"
)

// NoRuleMatchedError is reported for a file no rule applies to when the
// build policy requires at least one match.
type NoRuleMatchedError struct {
	Path string
}

func (e *NoRuleMatchedError) Error() string {
	return fmt.Sprintf("no rule matched %s", e.Path)
}

// ErrorCode implements the coded error interface
func (e *NoRuleMatchedError) ErrorCode() ErrorCode { return ErrNoRuleMatched }

// TransformError records a transform failure for a single file.
// Fatal errors fail the build, recoverable ones become warnings.
type TransformError struct {
	TransformID string
	Path        string
	Cause       error
	Fatal       bool
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s failed for %s: %v", e.TransformID, e.Path, e.Cause)
}

// Unwrap returns the transform's own error
func (e *TransformError) Unwrap() error { return e.Cause }

// ErrorCode implements the coded error interface
func (e *TransformError) ErrorCode() ErrorCode { return ErrTransform }

// OutputCollisionError is raised when distinct sources resolve to the same output path.
type OutputCollisionError struct {
	Path    string
	Sources []string
}

func (e *OutputCollisionError) Error() string {
	return fmt.Sprintf("output path %s is produced by multiple sources: %s",
		e.Path, strings.Join(e.Sources, ", "))
}

// ErrorCode implements the coded error interface
func (e *OutputCollisionError) ErrorCode() ErrorCode { return ErrOutputCollision }

// BuildFailedError aggregates every fatal error collected during a run.
type BuildFailedError struct {
	Errors []error
}

// Error implements the error interface.
func (e *BuildFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "build failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("build failed: %v", e.Errors[0])
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "build failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (e *BuildFailedError) Unwrap() []error {
	return e.Errors
}

// ErrorCode implements the coded error interface
func (e *BuildFailedError) ErrorCode() ErrorCode { return ErrBuildFailed }

// NewBuildFailed creates a BuildFailedError from a slice of errors.
// Returns nil if the slice is empty.
func NewBuildFailed(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &BuildFailedError{Errors: errs}
}
