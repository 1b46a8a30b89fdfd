package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/tray/internal/core/logging"
)

const defaultReloadDebounce = 250 * time.Millisecond

// Watcher reloads the config file when it changes on disk. Editors often
// replace files through rename, so the parent directory is watched and
// events are matched by basename.
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:     path,
		debounce: defaultReloadDebounce,
		log:      logging.Component("config"),
	}
}

// Watch blocks until ctx is cancelled, calling fn with every successfully
// loaded and validated config. Invalid configs are logged and skipped so the
// previous config stays in effect.
func (w *Watcher) Watch(ctx context.Context, fn func(*Config)) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		if ctx.Err() != nil {
			return
		}
		cfg, err := Load(w.path)
		if err != nil {
			w.log.Warn().Err(err).Str("path", w.path).Msg("config reload failed")
			return
		}
		w.log.Info().Str("path", w.path).Msg("config reloaded")
		fn(cfg)
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	w.log.Debug().Str("dir", dir).Str("file", file).Msg("config watcher started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Str("dir", dir).Msg("config watch error")
		}
	}
}
