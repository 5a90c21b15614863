package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for a class of failure. Tests and the
// JSON report match on codes, never on messages.
type ErrorCode string

const (
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCanceled      ErrorCode = "CANCELED"

	// Configuration is fatal before any file is read
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Per-file and whole-build failures
	ErrNoRuleMatched   ErrorCode = "NO_RULE_MATCHED"
	ErrTransform       ErrorCode = "TRANSFORM"
	ErrOutputCollision ErrorCode = "OUTPUT_COLLISION"
	ErrBuildFailed     ErrorCode = "BUILD_FAILED"
	ErrPlugin          ErrorCode = "PLUGIN"

	// Source reads and output writes
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// BuildError is a coded error with optional structured details and cause
type BuildError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error renders as "[CODE] message" followed by ": cause" when wrapping
func (e *BuildError) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Wrapped
}

// Is matches any BuildError carrying the same code, so a bare
// New(code, "") works as a sentinel for errors.Is
func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	return ok && t.Code == e.Code
}

func New(code ErrorCode, message string) *BuildError {
	return &BuildError{Code: code, Message: message, Details: map[string]interface{}{}}
}

func Newf(code ErrorCode, format string, args ...interface{}) *BuildError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *BuildError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BuildError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail records a key/value pair for structured reporting
func (e *BuildError) WithDetail(key string, value interface{}) *BuildError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// ErrorCode implements the coded error interface shared with the typed build errors
func (e *BuildError) ErrorCode() ErrorCode {
	return e.Code
}

// coded is implemented by every error in this package
type coded interface {
	ErrorCode() ErrorCode
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode() == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if it carries none
func GetErrorCode(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BuildError
func GetErrorDetails(err error) map[string]interface{} {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Details
	}
	return nil
}

// Configuration wraps err as a fatal configuration error.
func Configuration(err error, format string, args ...interface{}) *BuildError {
	if err == nil {
		return Newf(ErrConfigValid, format, args...)
	}
	return Wrapf(err, ErrConfigValid, format, args...)
}

// IsConfigurationError reports whether err is a configuration error
func IsConfigurationError(err error) bool {
	return IsErrorCode(err, ErrConfigValid)
}

// Is, As and Join re-export the standard helpers so callers need one import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)
