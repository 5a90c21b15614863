package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/bundler/pkg/cache"
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/naming"
	"github.com/arthur-debert/bundler/pkg/plugins"
	"github.com/arthur-debert/bundler/pkg/rules"
	"github.com/arthur-debert/bundler/pkg/telemetry"
	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/transform/builtin"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Pipeline builds one project. Runs may be repeated; the cache and the
// dependency graph carry over between them.
type Pipeline struct {
	opts     Options
	host     *plugins.Host
	fs       afero.Fs
	cache    *cache.Cache
	registry transform.Registry
	tracer   trace.Tracer

	ruleSet *rules.RuleSet
	matcher *rules.Matcher
	namer   *naming.Namer
	ignore  *rules.PathFilter
	chain   *transform.Chain
	graph   *Graph
	logger  zerolog.Logger
}

// job is the per-file state of a run
type job struct {
	path    string
	file    *types.SourceFile
	applied []types.Rule
	result  *types.TransformResult
	stat    FileStat
	// err is a fatal error found before or instead of transforming
	err error
}

// run holds the state shared by the workers of one Run
type run struct {
	mu  sync.Mutex
	res *Result
}

func (r *run) warn(errs ...error) {
	if len(errs) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.res.Warnings = append(r.res.Warnings, errs...)
}

// New validates opts and creates a pipeline. Configuration problems are
// returned here, before any file is read. host may be nil.
func New(opts Options, host *plugins.Host, options ...Option) (*Pipeline, error) {
	p := &Pipeline{
		opts:   opts,
		host:   host,
		graph:  NewGraph(),
		logger: logging.GetLogger("pipeline"),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.cache == nil {
		p.cache = cache.New()
	}
	if p.registry == nil {
		p.registry = builtin.NewRegistry()
	}
	if p.tracer == nil {
		p.tracer = telemetry.Tracer()
	}

	if opts.SourceDir == "" {
		return nil, errors.Configuration(nil, "source directory is required")
	}
	if opts.OutputDir == "" && !opts.DryRun {
		return nil, errors.Configuration(nil, "output directory is required")
	}
	if opts.Workers < 0 {
		return nil, errors.Configuration(nil, "workers cannot be negative")
	}
	if p.opts.Workers == 0 {
		p.opts.Workers = runtime.NumCPU()
	}
	format, err := manifest.ParseFormat(string(opts.Manifest))
	if err != nil {
		return nil, errors.Configuration(err, "invalid manifest format")
	}
	p.opts.Manifest = format

	if p.ruleSet, err = rules.NewRuleSet(opts.Rules, p.registry); err != nil {
		return nil, err
	}
	p.matcher = rules.NewMatcher(p.ruleSet, opts.RequireMatch)
	if p.namer, err = naming.NewNamer(opts.Filename, p.ruleSet.Rules()); err != nil {
		return nil, err
	}
	if p.ignore, err = rules.NewPathFilter(opts.Ignore); err != nil {
		return nil, errors.Configuration(err, "invalid ignore entry")
	}
	p.chain = transform.NewChain(p.registry, p.fs, opts.SourceDir)

	p.logger.Debug().
		Str("source", opts.SourceDir).
		Str("output", opts.OutputDir).
		Int("ruleCount", p.ruleSet.Len()).
		Int("workers", p.opts.Workers).
		Msg("Pipeline created")
	return p, nil
}

// Graph returns the dependency graph of the most recent runs
func (p *Pipeline) Graph() *Graph { return p.graph }

// Cache returns the transform cache the pipeline uses
func (p *Pipeline) Cache() *cache.Cache { return p.cache }

// Options returns the effective options
func (p *Pipeline) Options() Options { return p.opts }

// Ignored reports whether the source relative path is skipped by the
// ignore list
func (p *Pipeline) Ignored(rel string) bool {
	return p.ignore.Match(filepath.ToSlash(rel))
}

// Run builds the project once. When ctx is canceled, in-flight transforms
// finish but the run returns a CANCELED error without emitting anything.
// A failed build returns a BuildFailedError together with a Result whose
// Manifest is set only when partial manifests are enabled.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("source.dir", p.opts.SourceDir)))
	defer span.End()
	defer logging.Track(p.logger, "run")()

	start := time.Now()
	res := &Result{}
	r := &run{res: res}

	p.emit(ctx, r, plugins.Payload{Event: plugins.BeforeEnumerate})

	paths, err := p.enumerate(ctx)
	if err != nil {
		return nil, p.abort(span, err)
	}
	p.graph.Retain(paths)
	span.SetAttributes(attribute.Int("file.count", len(paths)))

	jobs := p.match(ctx, paths, r)
	if err := ctx.Err(); err != nil {
		return nil, p.abort(span, canceled(err))
	}

	p.transform(ctx, jobs, r)
	if err := ctx.Err(); err != nil {
		return nil, p.abort(span, canceled(err))
	}

	for _, j := range jobs {
		res.Files = append(res.Files, j.stat)
	}

	m, fatal, err := p.assemble(jobs)
	if err != nil {
		return nil, p.abort(span, err)
	}

	buildErr := errors.NewBuildFailed(fatal)
	if buildErr != nil && !p.opts.PartialManifest {
		res.Duration = time.Since(start)
		p.logger.Error().
			Int("errors", len(fatal)).
			Strs("failed", res.FailedFiles()).
			Msg("Build failed")
		span.RecordError(buildErr)
		span.SetStatus(codes.Error, "build failed")
		return res, buildErr
	}

	res.Manifest = m
	if !p.opts.DryRun {
		written, err := manifest.Emit(p.fs, p.opts.OutputDir, m, p.opts.Manifest)
		res.Written = written
		if err != nil {
			return res, p.abort(span, err)
		}
	}
	p.emit(ctx, r, plugins.Payload{
		Event:    plugins.AfterEmit,
		Manifest: m,
		OutDir:   p.opts.OutputDir,
	})

	res.Duration = time.Since(start)
	if buildErr != nil {
		p.logger.Error().
			Int("errors", len(fatal)).
			Int("outputs", m.Len()).
			Msg("Build failed, partial manifest emitted")
		span.RecordError(buildErr)
		span.SetStatus(codes.Error, "build failed")
		return res, buildErr
	}

	p.logger.Info().
		Int("files", len(jobs)).
		Int("outputs", m.Len()).
		Int("cacheHits", res.CacheHits()).
		Int("warnings", len(res.Warnings)).
		Dur("duration", res.Duration).
		Msg("Build complete")
	return res, nil
}

// enumerate lists every file under the source root that the ignore list
// keeps, as sorted slash separated relative paths. The output directory is
// skipped when it lies inside the source root.
func (p *Pipeline) enumerate(ctx context.Context) ([]string, error) {
	root := p.opts.SourceDir
	if _, err := p.fs.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "source directory %s does not exist", root)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read source directory %s", root)
	}
	outDir := filepath.Clean(p.opts.OutputDir)

	var paths []string
	err := afero.Walk(p.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if info.IsDir() && filepath.Clean(path) == outDir {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if p.ignore.Match(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to enumerate %s", root)
	}

	sort.Strings(paths)
	p.logger.Debug().Int("count", len(paths)).Msg("Files enumerated")
	return paths, nil
}

// match selects the rules of every path. Matching is single threaded so
// afterMatch callbacks observe files in path order.
func (p *Pipeline) match(ctx context.Context, paths []string, r *run) []*job {
	jobs := make([]*job, 0, len(paths))
	for _, path := range paths {
		j := &job{path: path, stat: FileStat{Path: path}}
		jobs = append(jobs, j)

		applied, err := p.matcher.Match(path)
		if err != nil {
			j.err = err
			j.stat.Failed = true
			continue
		}
		j.applied = applied
		if len(applied) == 0 {
			j.stat.Copied = true
			r.warn(&errors.NoRuleMatchedError{Path: path})
		}
		for _, rule := range applied {
			j.stat.Rules = append(j.stat.Rules, rule.DisplayName())
		}

		p.emit(ctx, r, plugins.Payload{
			Event: plugins.AfterMatch,
			File:  path,
			Rules: j.stat.Rules,
		})
	}
	return jobs
}

// transform runs every matched job on the worker pool. Jobs that have not
// started when ctx is canceled are skipped.
func (p *Pipeline) transform(ctx context.Context, jobs []*job, r *run) {
	hashes := newHashIndex(p.fs, p.opts.SourceDir)
	// Transforms are never interrupted once started
	work := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(p.opts.Workers)
	for _, j := range jobs {
		if j.err != nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p.transformOne(work, j, hashes)
			p.graph.Add(j.path, resultDeps(j.result))
			if j.result != nil {
				r.warn(j.result.Warnings()...)
			}

			if ctx.Err() != nil {
				return nil
			}
			p.emit(ctx, r, plugins.Payload{
				Event:    plugins.AfterTransform,
				File:     j.path,
				Rules:    j.stat.Rules,
				Outputs:  outputSizes(j.result),
				CacheHit: j.stat.CacheHit,
				Failed:   j.stat.Failed,
			})
			return nil
		})
	}
	_ = g.Wait()

	sortWarnings(r.res.Warnings)
}

func (p *Pipeline) transformOne(ctx context.Context, j *job, hashes *hashIndex) {
	ctx, span := p.tracer.Start(ctx, "pipeline.transform",
		trace.WithAttributes(attribute.String("file.path", j.path)))
	defer span.End()
	start := time.Now()

	file, err := hashes.read(j.path)
	if err != nil {
		j.err = errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", j.path).WithDetail("path", j.path)
		j.stat.Failed = true
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return
	}
	j.file = file

	if len(j.applied) == 0 {
		j.result = p.chain.Run(ctx, file, nil)
	} else {
		identity := chainIdentity(j.applied, j.path)
		j.result, j.stat.CacheHit = p.cache.GetOrCompute(file, identity, func() *types.TransformResult {
			return p.chain.Run(ctx, file, j.applied)
		}, cache.WithDependencyHashes(hashes.lookup))
	}
	j.stat.Duration = time.Since(start)
	j.stat.Failed = j.result == nil || j.result.Failed()

	span.SetAttributes(attribute.Bool("cache.hit", j.stat.CacheHit))
	if j.stat.Failed {
		span.SetStatus(codes.Error, "transform failed")
	}
	p.logger.Trace().
		Str("path", j.path).
		Bool("cacheHit", j.stat.CacheHit).
		Bool("failed", j.stat.Failed).
		Dur("duration", j.stat.Duration).
		Msg("File transformed")
}

// assemble names every output and collects the manifest in path order. It
// returns the fatal per-file errors, or an error for a structural problem
// such as an output collision.
func (p *Pipeline) assemble(jobs []*job) (*manifest.Manifest, []error, error) {
	builder := manifest.NewBuilder()
	reserved := p.opts.Manifest.FileName()
	var fatal []error

	for _, j := range jobs {
		if j.err != nil {
			fatal = append(fatal, j.err)
			continue
		}
		if j.result == nil {
			fatal = append(fatal, errors.Newf(errors.ErrInternal, "no result for %s", j.path))
			continue
		}
		if j.result.Failed() {
			fatal = append(fatal, j.result.FatalErrors()...)
			continue
		}
		if err := p.place(builder, j, reserved); err != nil {
			return nil, nil, err
		}
	}

	m := builder.Build()
	p.logger.Debug().
		Int("outputs", m.Len()).
		Int("inline", len(m.Inline())).
		Int("fatal", len(fatal)).
		Msg("Manifest assembled")
	return m, fatal, nil
}

// place records the outputs of one successful job
func (p *Pipeline) place(b *manifest.Builder, j *job, reserved string) error {
	primary := j.result.Primary()
	if primary == nil {
		return nil
	}
	outPath := p.namer.Name(j.file, j.applied, primary.Content)

	claim := func(path string, content []byte) error {
		if path == reserved {
			return &errors.OutputCollisionError{Path: path, Sources: []string{j.path, "(manifest)"}}
		}
		return b.Add(path, j.path, content)
	}

	switch extract := extractTarget(j.applied); {
	case primary.Inline:
		b.AddInline(j.path, primary.DataURI, primary.Content)
	case extract != "":
		if extract == reserved {
			return &errors.OutputCollisionError{Path: extract, Sources: []string{j.path, "(manifest)"}}
		}
		if err := b.Append(extract, j.path, primary.Content); err != nil {
			return err
		}
	default:
		if err := claim(outPath, primary.Content); err != nil {
			return err
		}
	}

	// Named outputs sit next to the file's own output path
	for _, o := range j.result.Named() {
		if err := claim(outPath+o.Name, o.Content); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) emit(ctx context.Context, r *run, payload plugins.Payload) {
	if payload.Root == "" {
		payload.Root = p.opts.SourceDir
	}
	r.warn(p.host.Emit(ctx, payload)...)
}

func (p *Pipeline) abort(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.IsErrorCode(err, errors.ErrCanceled) {
		p.logger.Info().Msg("Build canceled")
	} else {
		p.logger.Error().Err(err).Msg("Build aborted")
	}
	return err
}

func canceled(err error) error {
	return errors.Wrap(err, errors.ErrCanceled, "build canceled")
}

// chainIdentity scopes the applied rules to the file path, since transforms
// such as esbuild pick their loader from the extension and resolve
// references relative to the file
func chainIdentity(applied []types.Rule, path string) string {
	var b strings.Builder
	b.WriteString(types.ChainIdentity(applied))
	for _, rule := range applied {
		o := rule.Options
		if o.Limit != 0 || o.Minimize {
			b.WriteString(" #")
			b.WriteString(rule.DisplayName())
			if o.Minimize {
				b.WriteString(" min")
			}
			if o.Limit != 0 {
				b.WriteString(" limit=")
				b.WriteString(strconv.FormatInt(o.Limit, 10))
			}
		}
	}
	b.WriteString("@")
	b.WriteString(path)
	return b.String()
}

// extractTarget returns the combined asset of the last applied rule that
// names one
func extractTarget(applied []types.Rule) string {
	for i := len(applied) - 1; i >= 0; i-- {
		if applied[i].Options.Extract != "" {
			return applied[i].Options.Extract
		}
	}
	return ""
}

func resultDeps(res *types.TransformResult) []string {
	if res == nil {
		return nil
	}
	return res.Dependencies
}

func outputSizes(res *types.TransformResult) map[string]int64 {
	if res == nil {
		return nil
	}
	sizes := make(map[string]int64, len(res.Outputs))
	for _, o := range res.Outputs {
		sizes[o.Name] = int64(len(o.Content))
	}
	return sizes
}

// sortWarnings orders warnings by message so results do not depend on
// worker scheduling
func sortWarnings(warnings []error) {
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Error() < warnings[j].Error()
	})
}
