package config

import "time"

// Config is the complete bundler configuration
type Config struct {
	Source  SourceConfig   `koanf:"source" toml:"source"`
	Output  OutputConfig   `koanf:"output" toml:"output"`
	Policy  PolicyConfig   `koanf:"policy" toml:"policy"`
	Build   BuildConfig    `koanf:"build" toml:"build"`
	Cache   CacheConfig    `koanf:"cache" toml:"cache"`
	Watch   WatchConfig    `koanf:"watch" toml:"-"`
	Rules   []RuleConfig   `koanf:"rules" toml:"rules"`
	Plugins []PluginConfig `koanf:"plugins" toml:"plugins,omitempty"`

	// Root is the project directory the configuration was loaded for
	Root string `koanf:"-" toml:"-"`

	// File is the project file that was loaded, empty if none
	File string `koanf:"-" toml:"-"`
}

type SourceConfig struct {
	Dir    string   `koanf:"dir" toml:"dir"`
	Ignore []string `koanf:"ignore" toml:"ignore"`
}

type OutputConfig struct {
	Dir string `koanf:"dir" toml:"dir"`

	// Filename is the template for files no rule names
	Filename string `koanf:"filename" toml:"filename"`

	// Manifest is the manifest document format, json or yaml
	Manifest string `koanf:"manifest" toml:"manifest"`
}

type PolicyConfig struct {
	RequireMatch    bool `koanf:"require_match" toml:"require_match"`
	PartialManifest bool `koanf:"partial_manifest" toml:"partial_manifest"`
}

type BuildConfig struct {
	Workers int  `koanf:"workers" toml:"workers"`
	Trace   bool `koanf:"trace" toml:"trace,omitempty"`
}

type CacheConfig struct {
	Dir        string `koanf:"dir" toml:"dir,omitempty"`
	Persist    bool   `koanf:"persist" toml:"persist"`
	MaxEntries int    `koanf:"max_entries" toml:"max_entries"`
	MaxBytes   int64  `koanf:"max_bytes" toml:"max_bytes"`
}

type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// RuleConfig is a rule as written in the project file
type RuleConfig struct {
	Name         string             `koanf:"name" toml:"name,omitempty"`
	Pattern      string             `koanf:"pattern" toml:"pattern,omitempty"`
	Test         string             `koanf:"test" toml:"test,omitempty"`
	Include      []string           `koanf:"include" toml:"include,omitempty"`
	Exclude      []string           `koanf:"exclude" toml:"exclude,omitempty"`
	Phase        string             `koanf:"phase" toml:"phase,omitempty"`
	NameTemplate string             `koanf:"name_template" toml:"name_template,omitempty"`
	Final        bool               `koanf:"final" toml:"final,omitempty"`
	Chain        []TransformConfig  `koanf:"chain" toml:"chain,omitempty"`
	Options      *RuleOptionsConfig `koanf:"options" toml:"options,omitempty"`
}

type TransformConfig struct {
	Use     string                 `koanf:"use" toml:"use"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty"`
}

type RuleOptionsConfig struct {
	Limit    int64  `koanf:"limit" toml:"limit,omitempty"`
	Minimize bool   `koanf:"minimize" toml:"minimize,omitempty"`
	Extract  string `koanf:"extract" toml:"extract,omitempty"`
}

type PluginConfig struct {
	Use     string                 `koanf:"use" toml:"use"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty"`
}
