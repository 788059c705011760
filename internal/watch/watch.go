// Package watch revalidates the store whenever something external edits
// it: an editor, another speck invocation, a merge. On each change the
// file is reloaded, auto-repaired if needed, and the repaired form is
// persisted.
package watch

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"speck/internal/logs"
	"speck/internal/store"
)

// Run blocks, watching repoRoot's store file until the watcher fails or
// done is closed.
func Run(repoRoot string, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic saves replace the file by
	// rename, which would drop a file-level watch.
	dir := filepath.Dir(store.Path(repoRoot))
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Base(store.Path(repoRoot))
	logs.Info("Watching %s for external changes", store.Path(repoRoot))

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			revalidate(repoRoot)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logs.Warn("Watcher error: %v", err)
		}
	}
}

func revalidate(repoRoot string) {
	m, rep, err := store.LoadWithReport(repoRoot)
	if err != nil {
		// Structural damage is reported, never papered over.
		logs.Error("Store changed externally and is no longer loadable: %v", err)
		return
	}
	if !rep.Dirty() {
		logs.Debug("Store changed externally; still consistent (%d branches)", len(m.Branches))
		return
	}
	if err := store.Save(repoRoot, m); err != nil {
		logs.Error("Failed to persist repaired store: %v", err)
		return
	}
	logs.Info("Store changed externally; repaired (migrated=%v, index=%v, timestamps=%d)",
		rep.Migrated, rep.RepairedIndex, rep.RepairedTimestamps)
}
