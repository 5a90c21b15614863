package builtin

import (
	"github.com/arthur-debert/bundler/pkg/registry"
	"github.com/arthur-debert/bundler/pkg/transform"
)

// Transform identifiers
const (
	IDRaw     = "raw"
	IDBanner  = "banner"
	IDEsbuild = "esbuild"
	IDCSS     = "css"
	IDSVGO    = "svgo"
	IDURL     = "url"
	IDJSON    = "json"
	IDGzip    = "gzip"
)

// All returns a fresh instance of every built-in transform
func All() []transform.Transform {
	return []transform.Transform{
		&Raw{},
		&Banner{},
		&Esbuild{},
		&CSS{},
		&SVGO{},
		&URL{},
		&JSON{},
		&Gzip{},
	}
}

// Register adds every built-in transform to reg
func Register(reg transform.Registry) error {
	for _, t := range All() {
		if err := reg.Register(t.ID(), t); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in transforms
func NewRegistry() transform.Registry {
	reg := transform.NewRegistry()
	for _, t := range All() {
		registry.MustRegister(reg, t.ID(), t)
	}
	return reg
}
