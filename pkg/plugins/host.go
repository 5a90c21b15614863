package plugins

import (
	"context"
	"fmt"
	"sync"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/rs/zerolog"
)

// Event names a point in the build lifecycle
type Event string

const (
	BeforeEnumerate Event = "beforeEnumerate"
	AfterMatch      Event = "afterMatch"
	AfterTransform  Event = "afterTransform"
	AfterEmit       Event = "afterEmit"
)

// Events lists every lifecycle event in the order a build fires them
var Events = []Event{BeforeEnumerate, AfterMatch, AfterTransform, AfterEmit}

func (e Event) valid() bool {
	for _, known := range Events {
		if e == known {
			return true
		}
	}
	return false
}

// Payload is the read-only data passed to callbacks
type Payload struct {
	Event Event
	// Root is the source directory of the build
	Root string
	// File is the source path for per-file events
	File string
	// Rules holds the names of the rules applied to File
	Rules []string
	// Outputs holds the output names and sizes after a transform
	Outputs map[string]int64
	// CacheHit reports whether the transform result came from the cache
	CacheHit bool
	// Failed reports a fatal transform error for File
	Failed bool
	// Manifest is the manifest after emit, nil for earlier events
	Manifest *manifest.Manifest
	// OutDir is where outputs were written
	OutDir string
}

// Callback handles one event
type Callback func(ctx context.Context, p Payload) error

// Plugin registers a set of callbacks on a host
type Plugin interface {
	Name() string
	Register(h *Host) error
}

type subscription struct {
	plugin string
	fn     Callback
}

// Host holds callbacks keyed by event. Emit calls are serialized, so
// callbacks never run concurrently with each other.
type Host struct {
	mu     sync.RWMutex
	subs   map[Event][]subscription
	emitMu sync.Mutex
	logger zerolog.Logger
}

// NewHost creates a host without callbacks
func NewHost() *Host {
	return &Host{
		subs:   map[Event][]subscription{},
		logger: logging.GetLogger("plugins.host"),
	}
}

// On registers fn for event under the given plugin name
func (h *Host) On(event Event, plugin string, fn Callback) error {
	if !event.valid() {
		return errors.Newf(errors.ErrInvalidInput, "unknown lifecycle event %q", event)
	}
	if fn == nil {
		return errors.Newf(errors.ErrInvalidInput, "nil callback for %s from %s", event, plugin)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[event] = append(h.subs[event], subscription{plugin: plugin, fn: fn})
	return nil
}

// Use registers every plugin in order
func (h *Host) Use(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Register(h); err != nil {
			return errors.Wrapf(err, errors.ErrPlugin, "failed to register plugin %s", p.Name())
		}
		h.logger.Debug().Str("plugin", p.Name()).Msg("Plugin registered")
	}
	return nil
}

// Count returns the number of callbacks registered for event
func (h *Host) Count(event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[event])
}

// Emit runs every callback registered for p.Event in registration order and
// returns their failures. A nil host emits nothing.
func (h *Host) Emit(ctx context.Context, p Payload) []error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	subs := append([]subscription(nil), h.subs[p.Event]...)
	h.mu.RUnlock()
	if len(subs) == 0 {
		return nil
	}

	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	var failures []error
	for _, sub := range subs {
		if err := h.call(ctx, sub, p); err != nil {
			h.logger.Warn().
				Err(err).
				Str("plugin", sub.plugin).
				Str("event", string(p.Event)).
				Msg("Plugin callback failed")
			failures = append(failures, errors.Wrapf(err, errors.ErrPlugin, "plugin %s failed on %s", sub.plugin, p.Event).
				WithDetail("plugin", sub.plugin).
				WithDetail("event", string(p.Event)))
		}
	}
	return failures
}

func (h *Host) call(ctx context.Context, sub subscription, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.fn(ctx, p)
}
