package pipeline

import (
	"github.com/arthur-debert/bundler/pkg/cache"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
)

// Options describe a build
type Options struct {
	// SourceDir is the root every source path is relative to
	SourceDir string
	// OutputDir receives the outputs and the manifest document
	OutputDir string
	// Ignore lists directory prefixes and globs skipped during enumeration
	Ignore []string
	Rules  []types.Rule
	// Filename is the name template for files no rule names
	Filename string
	Manifest manifest.Format
	// RequireMatch turns files no rule applies to into fatal errors instead
	// of copying them through
	RequireMatch bool
	// PartialManifest emits the outputs of successful files when others fail
	PartialManifest bool
	// Workers bounds concurrent transforms; zero uses one per CPU
	Workers int
	// DryRun runs everything except writing files
	DryRun bool
}

// Option configures the collaborators of a Pipeline
type Option func(*Pipeline)

// WithFs sets the filesystem sources are read from and outputs written to
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = fs
	}
}

// WithCache shares a transform cache between pipelines or runs
func WithCache(c *cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithRegistry sets the transforms rules can reference
func WithRegistry(reg transform.Registry) Option {
	return func(p *Pipeline) {
		p.registry = reg
	}
}

// WithTracer sets the tracer for run and transform spans
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}
