package plugins_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/plugins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitOrderAndIsolation(t *testing.T) {
	h := plugins.NewHost()
	var calls []string
	record := func(name string, err error) plugins.Callback {
		return func(_ context.Context, _ plugins.Payload) error {
			calls = append(calls, name)
			return err
		}
	}

	require.NoError(t, h.On(plugins.AfterMatch, "first", record("first", nil)))
	require.NoError(t, h.On(plugins.AfterMatch, "failing", record("failing", stderrors.New("nope"))))
	require.NoError(t, h.On(plugins.AfterMatch, "panicking", func(context.Context, plugins.Payload) error {
		calls = append(calls, "panicking")
		panic("bad plugin")
	}))
	require.NoError(t, h.On(plugins.AfterMatch, "last", record("last", nil)))
	require.NoError(t, h.On(plugins.AfterEmit, "other", record("other", nil)))

	failures := h.Emit(context.Background(), plugins.Payload{Event: plugins.AfterMatch, File: "a.js"})

	assert.Equal(t, []string{"first", "failing", "panicking", "last"}, calls)
	require.Len(t, failures, 2)
	assert.True(t, errors.IsErrorCode(failures[0], errors.ErrPlugin))
	assert.Equal(t, "failing", errors.GetErrorDetails(failures[0])["plugin"])
	assert.Contains(t, failures[1].Error(), "panic: bad plugin")
}

func TestOnValidates(t *testing.T) {
	h := plugins.NewHost()
	assert.Error(t, h.On("beforeLunch", "p", func(context.Context, plugins.Payload) error { return nil }))
	assert.Error(t, h.On(plugins.AfterEmit, "p", nil))
	assert.Equal(t, 0, h.Count(plugins.AfterEmit))
}

func TestNilHostEmitsNothing(t *testing.T) {
	var h *plugins.Host
	assert.Nil(t, h.Emit(context.Background(), plugins.Payload{Event: plugins.AfterEmit}))
}

func TestEmitIsSerialized(t *testing.T) {
	h := plugins.NewHost()
	var mu sync.Mutex
	active, maxActive := 0, 0
	require.NoError(t, h.On(plugins.AfterTransform, "counter", func(context.Context, plugins.Payload) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Emit(context.Background(), plugins.Payload{Event: plugins.AfterTransform})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

func TestBudgetPlugin(t *testing.T) {
	factories := plugins.NewFactories()
	factory, err := factories.Get("budget")
	require.NoError(t, err)

	p, err := factory(map[string]interface{}{"max_asset_size": 8})
	require.NoError(t, err)
	h := plugins.NewHost()
	require.NoError(t, h.Use(p))

	b := manifest.NewBuilder()
	require.NoError(t, b.Add("small.js", "small.js", []byte("ok")))
	require.NoError(t, b.Add("big.js", "big.js", bytes.Repeat([]byte("x"), 20)))
	require.NoError(t, b.Add("big.js.gz", "big.js", bytes.Repeat([]byte("x"), 20)))

	failures := h.Emit(context.Background(), plugins.Payload{Event: plugins.AfterEmit, Manifest: b.Build()})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "big.js (20 bytes)")
	assert.NotContains(t, failures[0].Error(), "big.js.gz")

	_, err = factory(map[string]interface{}{"max_asset_size": 0})
	assert.Error(t, err)
	_, err = factory(map[string]interface{}{"unknown": true})
	assert.Error(t, err)
}

func TestProgressPlugin(t *testing.T) {
	factory, err := plugins.NewFactories().Get("progress")
	require.NoError(t, err)
	p, err := factory(nil)
	require.NoError(t, err)

	h := plugins.NewHost()
	require.NoError(t, h.Use(p))
	assert.Equal(t, 1, h.Count(plugins.BeforeEnumerate))
	assert.Equal(t, 1, h.Count(plugins.AfterTransform))

	ctx := context.Background()
	h.Emit(ctx, plugins.Payload{Event: plugins.AfterTransform, File: "a.js"})
	h.Emit(ctx, plugins.Payload{Event: plugins.AfterTransform, File: "b.js", CacheHit: true})
	assert.Equal(t, int64(2), p.(*plugins.Progress).Files())

	assert.Empty(t, h.Emit(ctx, plugins.Payload{Event: plugins.AfterEmit}))
	h.Emit(ctx, plugins.Payload{Event: plugins.BeforeEnumerate})
	assert.Equal(t, int64(0), p.(*plugins.Progress).Files())
}
