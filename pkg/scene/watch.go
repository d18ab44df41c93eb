package scene

import (
	"context"
	"path/filepath"
	"time"

	"github.com/framecast/player/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch calls fn every time the file at path changes, until ctx is done.
// Bursts of events are merged into one call after the settle period.
// The parent directory is watched so editors replacing the file are noticed.
func Watch(ctx context.Context, path string, settle time.Duration, fn func(), log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return err
	}
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(settle, fn)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Scene watch error")
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				log.Debug().Msg("Scene watch has ended")
				return
			}
		}
	}()
	return nil
}
