package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchAndRun re-runs path every time it (or the directory containing
// it) changes on disk, logging reload notices the way the teacher's
// cmd/gmx prints build notices (spec §1 ambient-stack choice to use
// log/slog for the CLI's operational lines; grounded on
// standardbeagle-lci's fsnotify watcher shape, see DESIGN.md).
//
// Per spec §4.2 imports are resolved once per run by textual inlining,
// so there is no standing import graph to watch individually; instead
// this watches the script's own directory, which covers same-directory
// `load module from` targets, the common case.
func watchAndRun(path string, timeout time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("watching for changes", "dir", dir, "entry", path)
	runAndReport(path, timeout)

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !pending {
				pending = true
				debounce.Reset(150 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		case <-debounce.C:
			if pending {
				pending = false
				slog.Info("change detected, re-running", "entry", path)
				runAndReport(path, timeout)
			}
		}
	}
}

func runAndReport(path string, timeout time.Duration) {
	if err := runOnce(path, timeout); err != nil {
		slog.Error("run failed", "entry", path, "error", err)
	}
}
