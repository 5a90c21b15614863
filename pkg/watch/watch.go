package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no debounce interval is given
const DefaultDebounce = 150 * time.Millisecond

// Builder is the part of a pipeline the watcher drives
type Builder interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	Ignored(rel string) bool
	Graph() *pipeline.Graph
}

// Report describes one completed rebuild
type Report struct {
	// Changed are the source relative paths that triggered the build, empty
	// for the initial build
	Changed []string
	// Affected are files depending on a changed path, as of the previous build
	Affected []string
	Result   *pipeline.Result
	Err      error
	Duration time.Duration
}

// Option configures a Watcher
type Option func(*Watcher)

// WithOnBuild sets the callback receiving a report after every build that
// was not canceled
func WithOnBuild(fn func(Report)) Option {
	return func(w *Watcher) {
		w.onBuild = fn
	}
}

// WithSkipDir excludes an absolute directory, typically the output
// directory, from watching
func WithSkipDir(dir string) Option {
	return func(w *Watcher) {
		w.skip = append(w.skip, filepath.Clean(dir))
	}
}

// Watcher watches a source tree and rebuilds it
type Watcher struct {
	builder  Builder
	root     string
	debounce time.Duration
	onBuild  func(Report)
	skip     []string
	logger   zerolog.Logger
}

// New creates a watcher for the source tree at root
func New(builder Builder, root string, debounce time.Duration, opts ...Option) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		builder:  builder,
		root:     filepath.Clean(root),
		debounce: debounce,
		onBuild:  func(Report) {},
		logger:   logging.GetLogger("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once, then rebuilds after every debounced batch of changes
// until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Watching for changes")

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time
	var runDone chan struct{}
	cancelRun := context.CancelFunc(func() {})
	stopRun := func() {
		cancelRun()
		if runDone != nil {
			<-runDone
			runDone = nil
		}
	}
	startRun := func(changed []string) {
		stopRun()
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		cancelRun, runDone = cancel, done
		go func() {
			defer close(done)
			w.build(runCtx, changed)
		}()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		stopRun()
	}()

	startRun(nil)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, relevant := w.handle(fw, ev)
			if !relevant {
				continue
			}
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}
			startRun(changed)
		}
	}
}

func (w *Watcher) build(ctx context.Context, changed []string) {
	affected := w.affected(changed)
	if len(changed) > 0 {
		w.logger.Info().
			Strs("changed", changed).
			Strs("affected", affected).
			Msg("Rebuilding")
	}

	start := time.Now()
	res, err := w.builder.Run(ctx)
	if errors.IsErrorCode(err, errors.ErrCanceled) {
		w.logger.Debug().Msg("Build superseded by newer changes")
		return
	}
	w.onBuild(Report{
		Changed:  changed,
		Affected: affected,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	})
}

func (w *Watcher) affected(changed []string) []string {
	seen := map[string]struct{}{}
	for _, c := range changed {
		for _, dep := range w.builder.Graph().Dependents(c) {
			seen[dep] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// handle returns the source relative path of an event worth rebuilding for.
// New directories are added to the watch list.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) (string, bool) {
	if ev.Op == fsnotify.Chmod {
		return "", false
	}
	if w.skipped(ev.Name) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.builder.Ignored(rel) {
		return "", false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", ev.Name).Msg("Failed to watch new directory")
			}
		}
	}
	w.logger.Trace().Str("path", rel).Str("op", ev.Op.String()).Msg("Source changed")
	return rel, true
}

// addTree watches dir and every directory below it that is not ignored
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if w.skipped(path) {
				return filepath.SkipDir
			}
			if rel, err := filepath.Rel(w.root, path); err == nil && w.builder.Ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		return fw.Add(path)
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", dir)
	}
	return nil
}

func (w *Watcher) skipped(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.skip {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
