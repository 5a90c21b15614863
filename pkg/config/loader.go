package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides
const EnvPrefix = "BUNDLER_"

// FileNames are the project files looked up in order
var FileNames = []string{"bundler.toml", "bundler.yaml", "bundler.yml"}

// Load reads the configuration for the project in root. An explicit path
// overrides the project file lookup.
func Load(root, path string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(embeddedDefaults{}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Project file
	if path == "" {
		path = findProjectFile(root)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path)
			}
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
		}
		logger.Debug().Str("file", path).Msg("Loaded project config")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	// 5. Post-process
	cfg.Root = root
	cfg.File = path
	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", cfg.Source.Dir).
		Str("output", cfg.Output.Dir).
		Int("rules", len(cfg.Rules)).
		Msg("Configuration loaded")
	return &cfg, nil
}

// envKey maps BUNDLER_OUTPUT_DIR to output.dir
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func findProjectFile(root string) string {
	for _, name := range FileNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config file %s (want .toml or .yaml)", path)
	}
}

func postProcess(cfg *Config) error {
	if cfg.Build.Workers < 0 {
		return errors.Configuration(nil, "build.workers cannot be negative")
	}
	if cfg.Cache.MaxEntries < 0 || cfg.Cache.MaxBytes < 0 {
		return errors.Configuration(nil, "cache limits cannot be negative")
	}
	if cfg.Watch.Debounce < 0 {
		return errors.Configuration(nil, "watch.debounce cannot be negative")
	}
	if cfg.Source.Dir == "" {
		return errors.Configuration(nil, "source.dir is required")
	}
	if cfg.Output.Dir == "" {
		return errors.Configuration(nil, "output.dir is required")
	}

	cfg.Source.Dir = resolve(cfg.Root, cfg.Source.Dir)
	cfg.Output.Dir = resolve(cfg.Root, cfg.Output.Dir)
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(xdg.CacheHome, logging.AppName)
	} else {
		cfg.Cache.Dir = resolve(cfg.Root, cfg.Cache.Dir)
	}
	return nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
