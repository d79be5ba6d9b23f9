package zones

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchConfig monitors the zone file for on-disk edits. The registry itself
// stays immutable; a change only produces a restart-required warning so
// operators notice drift between disk and the loaded zones.
func WatchConfig(ctx context.Context, path string, logger zerolog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("zone config watcher unavailable")
		return
	}
	if err := watcher.Add(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cannot watch zone config")
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					logger.Warn().Str("path", path).
						Msg("zone config changed on disk; restart to apply")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("zone config watcher error")
			}
		}
	}()
}
