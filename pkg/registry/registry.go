package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/arthur-debert/bundler/pkg/errors"
)

// Registry maps identifiers used in configuration to values of T
type Registry[T any] interface {
	// Register binds name to item. Names are unique and may not contain
	// whitespace.
	Register(name string, item T) error

	// Get resolves name, failing with ErrNotFound and the list of known
	// names when it is not bound
	Get(name string) (T, error)

	Has(name string) bool

	// Names returns the bound names, sorted
	Names() []string

	Count() int
}

type table[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty registry. kind names what the registry holds
// ("transform", "plugin") and appears in lookup errors.
func New[T any](kind string) Registry[T] {
	if kind == "" {
		kind = "item"
	}
	return &table[T]{kind: kind, items: make(map[string]T)}
}

func (t *table[T]) Register(name string, item T) error {
	if name == "" || strings.ContainsFunc(name, isSpace) {
		return errors.Newf(errors.ErrInvalidInput, "invalid %s name %q", t.kind, name).
			WithDetail("kind", t.kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, taken := t.items[name]; taken {
		return errors.Newf(errors.ErrAlreadyExists, "%s %q registered twice", t.kind, name).
			WithDetail("kind", t.kind).
			WithDetail("name", name)
	}
	t.items[name] = item
	return nil
}

func (t *table[T]) Get(name string) (T, error) {
	t.mu.RLock()
	item, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return item, nil
	}

	var zero T
	known := t.Names()
	msg := fmt.Sprintf("unknown %s %q", t.kind, name)
	if len(known) > 0 {
		msg += " (known: " + strings.Join(known, ", ") + ")"
	}
	return zero, errors.New(errors.ErrNotFound, msg).
		WithDetail("kind", t.kind).
		WithDetail("name", name)
}

func (t *table[T]) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.items[name]
	return ok
}

func (t *table[T]) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.items))
}

func (t *table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// MustRegister is Register for built-in tables, where a failure is a
// programming error
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
