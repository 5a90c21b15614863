// Package config loads bundler configuration.
//
// Values are layered: embedded defaults, then the project file (bundler.toml,
// bundler.yaml or bundler.yml in the project root), then BUNDLER_ environment
// variables. An environment variable maps to a key by dropping the prefix and
// turning the first underscore into a dot, so BUNDLER_CACHE_MAX_ENTRIES sets
// cache.max_entries.
package config
