package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/bundler/pkg/cache"
	"github.com/arthur-debert/bundler/pkg/config"
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/arthur-debert/bundler/pkg/plugins"
	"github.com/arthur-debert/bundler/pkg/rules"
	"github.com/arthur-debert/bundler/pkg/transform/builtin"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/spf13/afero"
)

// project is a loaded configuration and the collaborators built from it
type project struct {
	cfg   *config.Config
	rules []types.Rule
}

// loadProject reads the configuration selected by the global flags.
// override runs before the rules are built, so flags win over files.
func loadProject(opts *globalOptions, override func(*config.Config)) (*project, error) {
	root, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf(MsgErrAbsPath, err)
	}

	cfg, err := config.Load(root, opts.configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	built, err := cfg.BuildRules()
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, rules: built}, nil
}

// matcher compiles the rules against the built-in transforms
func (p *project) matcher() (*rules.Matcher, error) {
	set, err := rules.NewRuleSet(p.rules, builtin.NewRegistry())
	if err != nil {
		return nil, err
	}
	return rules.NewMatcher(set, p.cfg.Policy.RequireMatch), nil
}

// host instantiates the configured plugins
func (p *project) host() (*plugins.Host, error) {
	host := plugins.NewHost()
	factories := plugins.NewFactories()
	for _, pc := range p.cfg.Plugins {
		factory, err := factories.Get(pc.Use)
		if err != nil {
			return nil, errors.Configuration(err, MsgErrPluginCfg)
		}
		plugin, err := factory(pc.Options)
		if err != nil {
			return nil, errors.Configuration(err, MsgErrPluginOpts, pc.Use)
		}
		if err := host.Use(plugin); err != nil {
			return nil, errors.Configuration(err, MsgErrPluginOpts, pc.Use)
		}
	}
	return host, nil
}

// newCache builds the transform cache, backed by the disk store when the
// configuration persists it
func (p *project) newCache(fs afero.Fs) (*cache.Cache, error) {
	opts := []cache.Option{
		cache.WithMaxEntries(p.cfg.Cache.MaxEntries),
		cache.WithMaxBytes(p.cfg.Cache.MaxBytes),
	}
	if p.cfg.Cache.Persist {
		store, err := cache.OpenDiskStore(fs, p.cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cache.WithStore(store))
		logger := logging.GetLogger("cli")
		logger.Debug().Str("dir", p.cfg.Cache.Dir).Msg("Using persistent cache")
	}
	return cache.New(opts...), nil
}

// newPipeline wires config, plugins and cache into a pipeline on the OS
// filesystem
func (p *project) newPipeline(dryRun bool) (*pipeline.Pipeline, error) {
	format, err := manifest.ParseFormat(p.cfg.Output.Manifest)
	if err != nil {
		return nil, err
	}
	host, err := p.host()
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	c, err := p.newCache(fs)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		SourceDir:       p.cfg.Source.Dir,
		OutputDir:       p.cfg.Output.Dir,
		Ignore:          p.cfg.Source.Ignore,
		Rules:           p.rules,
		Filename:        p.cfg.Output.Filename,
		Manifest:        format,
		RequireMatch:    p.cfg.Policy.RequireMatch,
		PartialManifest: p.cfg.Policy.PartialManifest,
		Workers:         p.cfg.Build.Workers,
		DryRun:          dryRun,
	}, host, pipeline.WithFs(fs), pipeline.WithCache(c))
}
