package ml

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher watches the models directory and logs a warning when a
// loaded artifact file changes on disk. The registry itself is immutable for
// the process lifetime, so a drift warning means a restart is needed to pick
// up the new artifact.
type ArtifactWatcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

func WatchArtifacts(dir string, logger *zap.Logger) (*ArtifactWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	known := make(map[string]bool, len(ArtifactFiles()))
	for _, name := range ArtifactFiles() {
		known[name] = true
	}

	aw := &ArtifactWatcher{watcher: watcher, logger: logger, done: make(chan struct{})}
	go func() {
		defer close(aw.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !known[filepath.Base(event.Name)] {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					logger.Warn("model artifact changed on disk; loaded registry is stale, restart to pick it up",
						zap.String("artifact", event.Name),
						zap.String("op", event.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return aw, nil
}

func (aw *ArtifactWatcher) Close() error {
	err := aw.watcher.Close()
	<-aw.done
	return err
}
