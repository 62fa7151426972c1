package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ProcessFunc converts the point cloud file at in and writes it to out.
type ProcessFunc func(ctx context.Context, in, out string) error

// Watcher processes .pcd files created or written in a directory.
type Watcher struct {
	dir, outDir string
	process     ProcessFunc
	delay       time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	queue   chan string
}

func New(dir, outDir string, delay time.Duration, process ProcessFunc, log zerolog.Logger) *Watcher {
	return &Watcher{
		dir:     dir,
		outDir:  outDir,
		process: process,
		delay:   delay,
		log:     log,
		pending: make(map[string]*time.Timer),
		queue:   make(chan string, 64),
	}
}

// Run watches the directory until ctx is canceled.
// Files are processed one at a time after delay since their last change.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	w.log.Info().Str("dir", w.dir).Str("out_dir", w.outDir).Msg("watching")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer func() {
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pcd") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounce(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) debounce(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.queue <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-w.queue:
			out := filepath.Join(w.outDir, filepath.Base(in))
			start := time.Now()
			if err := w.process(ctx, in, out); err != nil {
				w.log.Error().Err(err).Str("file", in).Msg("failed to process")
				continue
			}
			w.log.Info().
				Str("file", in).
				Str("out", out).
				Dur("elapsed", time.Since(start)).
				Msg("processed")
		}
	}
}
