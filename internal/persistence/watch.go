package persistence

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
)

// Watch calls onLoad every time the snapshot at path is rewritten with a
// valid document. The parent directory is watched so atomic renames are
// seen. Invalid documents are logged and skipped. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, logger zerolog.Logger, onLoad func(agent.Snapshot)) error {
	logger = logger.With().Str("component", "snapshot_watcher").Str("path", path).Logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			snap, err := LoadFile(target)
			if err != nil {
				logger.Warn().Err(err).Msg("Ignoring unreadable snapshot")
				continue
			}
			logger.Info().Int("states", snap.Table.Len()).Msg("Snapshot reloaded")
			onLoad(snap)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("Watcher error")
		}
	}
}
