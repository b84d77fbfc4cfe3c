package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultCooldown is how long Watcher waits after a reload before it will
// act on another write/create event, absorbing the burst of events a
// single `mv`/editor save often produces. Grounded on the teacher's
// HotReloader (internal/config/hot_reload.go), whose CooldownTime
// defaults to 5s.
const defaultCooldown = 5 * time.Second

// Watcher reloads a config file whenever it changes on disk and pushes the
// newly parsed Config to onUpdate. Parse errors are reported through
// onError rather than stopping the watch, since a config file mid-write
// commonly parses invalid for one event. Cooldown debounces bursts of
// write/create events into a single reload; zero uses defaultCooldown.
type Watcher struct {
	Path     string
	Cooldown time.Duration
}

// Start blocks until ctx is canceled or the underlying fsnotify watcher
// fails to initialize. onUpdate is never called concurrently with itself.
func (w Watcher) Start(ctx context.Context, onUpdate func(Config), onError func(error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Path); err != nil {
		return fmt.Errorf("watch %s: %w", w.Path, err)
	}

	cooldown := w.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	var lastReload time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if now := time.Now(); !lastReload.IsZero() && now.Sub(lastReload) < cooldown {
				continue
			}
			cfg, err := Load(w.Path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			lastReload = time.Now()
			if onUpdate != nil {
				onUpdate(cfg)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
