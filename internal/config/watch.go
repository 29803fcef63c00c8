package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/mdstudio/internal/debounce"
)

// ReloadDelay coalesces the burst of events editors produce on save.
const ReloadDelay = 100 * time.Millisecond

// ReloadFunc receives a freshly loaded config, or the error that prevented
// loading it.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	reload *debounce.Debouncer
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch starts watching path and calls fn after each change until ctx is
// cancelled or Close is called. The containing directory is watched so
// that editors which save by rename are seen.
func Watch(ctx context.Context, path string, fn ReloadFunc, opts ...LoadOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		path:   abs,
		fsw:    fsw,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	w.reload = debounce.New(ReloadDelay, func() {
		cfg, err := Load(abs, opts...)
		if ctx.Err() != nil {
			return
		}
		fn(cfg, err)
	})

	go w.loop(ctx, fn)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, fn ReloadFunc) {
	defer close(w.done)
	defer w.fsw.Close()
	defer w.reload.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.reload.Trigger()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fn(nil, err)
		}
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close stops the watcher and waits for it to exit. No ReloadFunc call is
// in progress or starts after Close returns, so fn must not call Close.
func (w *Watcher) Close() error {
	w.once.Do(w.cancel)
	<-w.done
	return nil
}
