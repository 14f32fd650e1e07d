package server

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// startDataWatcher initializes fsnotify monitoring of the local data
// directory so edits to tab files reload the catalog without a restart.
func (ms *MapServer) startDataWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ms.watcher = watcher

	// Start monitoring in a goroutine
	go ms.watchDataFiles()

	if err := watcher.Add(ms.config.Sheets.DataDir); err != nil {
		return err
	}

	ms.logger.WithField("data_dir", ms.config.Sheets.DataDir).Info("Data watcher started")
	return nil
}

// watchDataFiles selects on watcher channels and dispatches events.
func (ms *MapServer) watchDataFiles() {
	defer ms.watcher.Close()

	for {
		select {
		case event, ok := <-ms.watcher.Events:
			if !ok {
				return
			}
			ms.handleDataEvent(event)

		case err, ok := <-ms.watcher.Errors:
			if !ok {
				return
			}
			ms.logger.WithError(err).Error("Data watcher error")
		}
	}
}

// handleDataEvent reloads the catalog when a tab file changes.
func (ms *MapServer) handleDataEvent(event fsnotify.Event) {
	// Ignore temporary files and hidden files
	fileName := filepath.Base(event.Name)
	if strings.HasPrefix(fileName, ".") || strings.HasSuffix(fileName, ".tmp") {
		return
	}

	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		go func(name string) {
			time.Sleep(500 * time.Millisecond) // Ensure file is fully written

			ms.logger.WithField("file", name).Info("Tab file changed, reloading catalog")

			ctx, cancel := context.WithTimeout(context.Background(), ms.config.FetchTimeoutDuration())
			defer cancel()

			if err := ms.LoadCatalog(ctx); err != nil {
				ms.logger.WithError(err).Error("Catalog reload failed, keeping previous content")
			}
		}(event.Name)
	}
}

// stopDataWatcher closes the watcher (idempotent).
func (ms *MapServer) stopDataWatcher() {
	if ms.watcher != nil {
		ms.watcher.Close()
	}
}
