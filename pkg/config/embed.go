package config

import (
	_ "embed"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/v2"
)

// defaults.toml is the lowest configuration layer; every key a project file
// may set has a value there.
//
//go:embed embedded/defaults.toml
var defaultsTOML []byte

// DefaultsContent returns the embedded defaults document
func DefaultsContent() string {
	return string(defaultsTOML)
}

// embeddedDefaults serves defaults.toml as a koanf provider
type embeddedDefaults struct{}

var _ koanf.Provider = embeddedDefaults{}

func (embeddedDefaults) ReadBytes() ([]byte, error) { return defaultsTOML, nil }

// Read parses the document directly, for callers loading without a parser
func (embeddedDefaults) Read() (map[string]interface{}, error) {
	return toml.Parser().Unmarshal(defaultsTOML)
}
