package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the YAML configuration file when it changes. The log level
// is applied to the shared zap.AtomicLevel; other settings reach the rest of
// the process through OnChange callbacks.
type Watcher struct {
	mu        sync.RWMutex
	config    *Config
	level     zap.AtomicLevel
	callbacks []func(*Config)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	reload    func() (*Config, error)
}

// NewWatcher starts watching initial.File. Without a file the watcher is inert.
func NewWatcher(initial *Config, level zap.AtomicLevel, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		config: initial,
		level:  level,
		logger: logger,
		stopCh: make(chan struct{}),
		reload: LoadConfig,
	}
	if initial.File == "" {
		logger.Debug("Configuration hot reloading disabled, no config file")
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors replace files on save, so the directory is watched.
	if err := fsWatcher.Add(filepath.Dir(initial.File)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	w.watcher = fsWatcher
	go w.watchLoop(filepath.Clean(initial.File))

	logger.Info("Configuration hot reloading enabled", zap.String("file", initial.File))
	return w, nil
}

func (w *Watcher) watchLoop(file string) {
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != file || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Info("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Reload reads the configuration again and applies it. An invalid file keeps
// the previous configuration.
func (w *Watcher) Reload() {
	next, err := w.reload()
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	previous := w.config
	w.config = next
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	if next.LogLevel != previous.LogLevel {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(next.LogLevel)); err != nil {
			w.logger.Warn("Ignoring unknown log level", zap.String("log_level", next.LogLevel))
		} else {
			w.level.SetLevel(lvl)
			w.logger.Info("Log level changed",
				zap.String("from", previous.LogLevel),
				zap.String("to", next.LogLevel),
			)
		}
	}

	for i, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Callback panicked",
						zap.Int("callback_index", i),
						zap.Any("panic", r),
					)
				}
			}()
			cb(next)
		}()
	}
	w.logger.Info("Configuration reloaded", zap.Int("callbacks_notified", len(callbacks)))
}

// OnChange registers a callback run after every successful reload
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// Current returns the latest configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}
