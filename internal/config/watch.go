package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"sourcetalk/internal/debounce"
	"sourcetalk/internal/logging"
)

// reloadSettle coalesces the burst of events editors produce on save.
const reloadSettle = 250 * time.Millisecond

// Watch reloads the configuration at path whenever it changes and passes the
// result to onChange. The parent directory is watched so that editors which
// save by rename are seen. A file that fails to parse is logged and skipped;
// the previous configuration stays in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logging.Config("watching %s", abs)

	gate := debounce.NewGate(reloadSettle)
	defer gate.Stop()

	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			logging.ConfigWarn("reload of %s failed, keeping previous config: %v", abs, err)
			return
		}
		logging.Config("reloaded %s", abs)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				gate.Edit(reload)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.ConfigWarn("watcher error: %v", err)
		}
	}
}
