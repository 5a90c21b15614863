package plugins

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/registry"
	"github.com/arthur-debert/bundler/pkg/transform"
)

// Factory creates a plugin from its configured options
type Factory func(options map[string]interface{}) (Plugin, error)

// Factories resolves plugin names used in configuration
type Factories = registry.Registry[Factory]

// DefaultMaxAssetSize matches the common 244 KiB performance hint
const DefaultMaxAssetSize = 250000

// NewFactories returns the built-in plugin factories
func NewFactories() Factories {
	reg := registry.New[Factory]("plugin")
	registry.MustRegister[Factory](reg, "budget", newBudget)
	registry.MustRegister[Factory](reg, "progress", newProgress)
	return reg
}

// Budget reports emitted assets larger than a size limit
type Budget struct {
	MaxAssetSize int64 `option:"max_asset_size"`
	// Ignore lists output path suffixes exempt from the limit
	Ignore []string `option:"ignore"`
}

func newBudget(options map[string]interface{}) (Plugin, error) {
	b := &Budget{MaxAssetSize: DefaultMaxAssetSize, Ignore: []string{".map", ".gz"}}
	if err := transform.DecodeOptions(options, b); err != nil {
		return nil, err
	}
	if b.MaxAssetSize <= 0 {
		return nil, fmt.Errorf("max_asset_size must be positive")
	}
	return b, nil
}

func (b *Budget) Name() string { return "budget" }

func (b *Budget) Register(h *Host) error {
	return h.On(AfterEmit, b.Name(), b.check)
}

func (b *Budget) check(_ context.Context, p Payload) error {
	var over []string
	for _, e := range p.Manifest.Entries() {
		if b.ignored(e.Path) || e.SizeBytes <= b.MaxAssetSize {
			continue
		}
		over = append(over, fmt.Sprintf("%s (%d bytes)", e.Path, e.SizeBytes))
	}
	if len(over) == 0 {
		return nil
	}
	sort.Strings(over)
	return fmt.Errorf("assets exceed the %d byte limit: %s", b.MaxAssetSize, strings.Join(over, ", "))
}

func (b *Budget) ignored(p string) bool {
	for _, suffix := range b.Ignore {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// Progress logs each transformed file and a summary after emit
type Progress struct {
	files atomic.Int64
	hits  atomic.Int64
}

func newProgress(options map[string]interface{}) (Plugin, error) {
	if err := transform.DecodeOptions(options, &struct{}{}); err != nil {
		return nil, err
	}
	return &Progress{}, nil
}

func (p *Progress) Name() string { return "progress" }

func (p *Progress) Register(h *Host) error {
	logger := logging.GetLogger("plugins.progress")

	if err := h.On(BeforeEnumerate, p.Name(), func(_ context.Context, _ Payload) error {
		p.files.Store(0)
		p.hits.Store(0)
		return nil
	}); err != nil {
		return err
	}
	if err := h.On(AfterTransform, p.Name(), func(_ context.Context, pl Payload) error {
		p.files.Add(1)
		if pl.CacheHit {
			p.hits.Add(1)
		}
		logger.Debug().
			Str("path", pl.File).
			Bool("cacheHit", pl.CacheHit).
			Bool("failed", pl.Failed).
			Msg("File transformed")
		return nil
	}); err != nil {
		return err
	}
	return h.On(AfterEmit, p.Name(), func(_ context.Context, pl Payload) error {
		logger.Info().
			Int64("files", p.files.Load()).
			Int64("cacheHits", p.hits.Load()).
			Int("outputs", pl.Manifest.Len()).
			Str("outDir", pl.OutDir).
			Msg("Build emitted")
		return nil
	})
}

// Files returns the number of files seen since the last build started
func (p *Progress) Files() int64 { return p.files.Load() }
