package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/tiers"
)

const defaultDebounce = 100 * time.Millisecond

// TableReplacer accepts a reloaded tier table.
type TableReplacer interface {
	ReplaceTable(table tiers.Table) (*tiers.Snapshot, error)
}

// Watcher reloads the tier table file when it changes on disk.
// A file that fails to load or validate leaves the current table in place.
type Watcher struct {
	path     string
	target   TableReplacer
	logger   *zap.Logger
	debounce time.Duration

	watcher   *fsnotify.Watcher
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// WatchTiers starts watching path. If the file system watch cannot be set
// up, a warning is logged and the returned Watcher does nothing.
func WatchTiers(path string, target TableReplacer, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		target:   target,
		logger:   logger,
		debounce: defaultDebounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.disable("resolving tiers file", err)
		return w
	}
	w.path = abs

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.disable("creating watcher", err)
		return w
	}
	// Editors often replace the file, so the directory is watched.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		w.disable("watching tiers directory", err)
		return w
	}
	w.watcher = fw

	go w.loop()
	return w
}

func (w *Watcher) disable(msg string, err error) {
	w.logger.Warn("tier table reload disabled", zap.String("step", msg), zap.Error(err))
	close(w.done)
}

// Active reports whether the file is being watched.
func (w *Watcher) Active() bool {
	return w.watcher != nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("tier table watcher error", zap.Error(err))

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) reload() {
	table, err := LoadTierTable(w.path)
	if err != nil {
		w.logger.Warn("tier table reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	snap, err := w.target.ReplaceTable(table)
	if err != nil {
		w.logger.Warn("tier table reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("tier table reloaded",
		zap.String("path", w.path),
		zap.Uint64("version", snap.Version),
	)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.watcher == nil {
			return
		}
		close(w.stop)
		<-w.done
		err = w.watcher.Close()
	})
	return err
}
