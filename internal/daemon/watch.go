package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 250 * time.Millisecond

// ConfigWatcher calls reload after any of a set of config files changes.
// Parent directories are watched so editors that replace the file by rename
// are still noticed.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	reload   func(ctx context.Context) error
	debounce time.Duration
	logger   zerolog.Logger
}

// NewConfigWatcher watches files. At least one file is required.
func NewConfigWatcher(files []string, reload func(ctx context.Context) error, logger zerolog.Logger) (*ConfigWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		watcher:  w,
		files:    make(map[string]struct{}, len(files)),
		reload:   reload,
		debounce: defaultDebounce,
		logger:   logger,
	}
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, err
		}
		cw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return cw, nil
}

// Run delivers reloads until ctx is done, then closes the watcher.
func (c *ConfigWatcher) Run(ctx context.Context) {
	defer c.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if !c.relevant(ev) {
				continue
			}
			c.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("config file changed")
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			fire = timer.C
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn().Err(err).Msg("config watcher error")
		case <-fire:
			fire = nil
			if err := c.reload(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("automatic config reload failed")
			}
		}
	}
}

func (c *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	_, ok := c.files[abs]
	return ok
}
