package transform

import (
	"context"
	stderrors "errors"
	"path"
	"strings"

	"github.com/arthur-debert/bundler/pkg/registry"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
)

// Transform converts the bytes of one file for one concern
type Transform interface {
	// ID returns the identifier rules refer to
	ID() string

	// ValidateOptions checks the options declared for this transform in a rule
	ValidateOptions(options map[string]interface{}) error

	// Apply transforms input. The returned result's primary output replaces
	// the input for the next transform; a nil primary keeps the input as is.
	// A returned error aborts the chain for this file.
	Apply(ctx context.Context, input []byte, options map[string]interface{}, tc *Context) (*types.TransformResult, error)
}

// Registry resolves transform identifiers
type Registry = registry.Registry[Transform]

// NewRegistry creates an empty transform registry
func NewRegistry() Registry {
	return registry.New[Transform]("transform")
}

// ErrRecoverable marks a transform failure that should not fail the build
var ErrRecoverable = stderrors.New("recoverable")

// Recoverable wraps err so the chain records it as a warning
func Recoverable(err error) error {
	if err == nil {
		return nil
	}
	return &recoverableError{err: err}
}

type recoverableError struct{ err error }

func (e *recoverableError) Error() string { return e.err.Error() }
func (e *recoverableError) Unwrap() []error {
	return []error{e.err, ErrRecoverable}
}

// Context gives a transform read-only knowledge of where it runs
type Context struct {
	// Path of the file being transformed, relative to the source root
	Path string
	// Rule is the display name of the rule whose chain is running
	Rule string
	// RuleOptions are the options of that rule
	RuleOptions types.RuleOptions

	fs   afero.Fs
	root string
}

// NewContext creates a Context whose sibling lookups go through a read-only
// view of fs rooted at root
func NewContext(fs afero.Fs, root, filePath string) *Context {
	var ro afero.Fs
	if fs != nil {
		ro = afero.NewReadOnlyFs(fs)
	}
	return &Context{
		Path: filePath,
		fs:   ro,
		root: root,
	}
}

// Resolve turns a reference found in the file into a path relative to the
// source root. References starting with a slash are root relative.
func (c *Context) Resolve(ref string) string {
	ref = strings.SplitN(ref, "?", 2)[0]
	if strings.HasPrefix(ref, "/") {
		return path.Clean(strings.TrimPrefix(ref, "/"))
	}
	return path.Clean(path.Join(path.Dir(c.Path), ref))
}

// ReadSibling resolves ref and returns the content of that file along with
// its root relative path
func (c *Context) ReadSibling(ref string) ([]byte, string, error) {
	resolved := c.Resolve(ref)
	if c.fs == nil {
		return nil, resolved, afero.ErrFileNotFound
	}
	data, err := afero.ReadFile(c.fs, path.Join(c.root, resolved))
	if err != nil {
		return nil, resolved, err
	}
	return data, resolved, nil
}

// DecodeOptions decodes a rule's options map into a transform specific
// struct using weak typing, so TOML integers and YAML strings both work
func DecodeOptions(options map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "option",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}
