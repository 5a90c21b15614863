package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuilder records runs. When block is set a run waits for its context
// to be canceled.
type fakeBuilder struct {
	mu       sync.Mutex
	runs     int
	canceled int
	block    bool
	graph    *pipeline.Graph
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{graph: pipeline.NewGraph()}
}

func (b *fakeBuilder) Run(ctx context.Context) (*pipeline.Result, error) {
	b.mu.Lock()
	b.runs++
	block := b.block
	b.mu.Unlock()

	if block {
		<-ctx.Done()
		b.mu.Lock()
		b.canceled++
		b.mu.Unlock()
		return nil, errors.Wrap(ctx.Err(), errors.ErrCanceled, "build canceled")
	}
	return &pipeline.Result{}, nil
}

func (b *fakeBuilder) Ignored(rel string) bool {
	return strings.HasPrefix(rel, "node_modules")
}

func (b *fakeBuilder) Graph() *pipeline.Graph { return b.graph }

func (b *fakeBuilder) setBlock(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.block = v
}

func (b *fakeBuilder) counts() (runs, canceled int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs, b.canceled
}

type reports struct {
	mu   sync.Mutex
	list []Report
}

func (r *reports) add(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, rep)
}

func (r *reports) snapshot() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.list...)
}

func startWatcher(t *testing.T, b *fakeBuilder, root string, opts ...Option) *reports {
	t.Helper()
	got := &reports{}
	opts = append(opts, WithOnBuild(got.add))
	w := New(b, root, 50*time.Millisecond, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return got
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcherBuildsInitiallyAndOnChange(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.css"), "a")

	b := newFakeBuilder()
	b.graph.Add("site.css", []string{"a.css"})
	got := startWatcher(t, b, root)

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, got.snapshot()[0].Changed)

	write(t, filepath.Join(root, "a.css"), "changed")

	require.Eventually(t, func() bool { return len(got.snapshot()) >= 2 }, 5*time.Second, 10*time.Millisecond)
	rep := got.snapshot()[1]
	assert.Equal(t, []string{"a.css"}, rep.Changed)
	assert.Equal(t, []string{"site.css"}, rep.Affected)
	assert.NoError(t, rep.Err)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	b := newFakeBuilder()
	got := startWatcher(t, b, root)
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

	for _, name := range []string{"one.js", "two.js", "three.js"} {
		write(t, filepath.Join(root, name), name)
	}

	require.Eventually(t, func() bool {
		reps := got.snapshot()
		if len(reps) < 2 {
			return false
		}
		var changed []string
		for _, r := range reps[1:] {
			changed = append(changed, r.Changed...)
		}
		return len(unique(changed)) == 3
	}, 5*time.Second, 10*time.Millisecond)

	// A burst within one debounce interval usually lands in a single build
	assert.LessOrEqual(t, len(got.snapshot()), 4)
}

func TestWatcherIgnoresSkippedPaths(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	write(t, filepath.Join(out, "old.js"), "x")
	write(t, filepath.Join(root, "node_modules", "lib", "x.js"), "x")

	b := newFakeBuilder()
	got := startWatcher(t, b, root, WithSkipDir(out))
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

	write(t, filepath.Join(out, "app.js"), "x")
	write(t, filepath.Join(root, "node_modules", "lib", "y.js"), "y")
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, got.snapshot(), 1)

	write(t, filepath.Join(root, "src.js"), "x")
	require.Eventually(t, func() bool { return len(got.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"src.js"}, got.snapshot()[1].Changed)
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	b := newFakeBuilder()
	got := startWatcher(t, b, root)
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	require.Eventually(t, func() bool { return len(got.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)

	write(t, filepath.Join(root, "css", "site.css"), "x")
	require.Eventually(t, func() bool {
		for _, r := range got.snapshot() {
			for _, c := range r.Changed {
				if c == "css/site.css" {
					return true
				}
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcherCancelsSupersededBuild(t *testing.T) {
	root := t.TempDir()
	b := newFakeBuilder()
	b.setBlock(true)
	got := startWatcher(t, b, root)

	require.Eventually(t, func() bool { runs, _ := b.counts(); return runs == 1 }, 5*time.Second, 10*time.Millisecond)

	b.setBlock(false)
	write(t, filepath.Join(root, "a.js"), "a")

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	runs, canceled := b.counts()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, canceled)
	assert.Equal(t, []string{"a.js"}, got.snapshot()[0].Changed)
}

func TestNewDefaults(t *testing.T) {
	w := New(newFakeBuilder(), "/src/", 0)
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.Equal(t, "/src", w.root)
	assert.True(t, New(newFakeBuilder(), "/src", 0, WithSkipDir("/src/dist/")).skipped("/src/dist/app.js"))
}

func unique(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
