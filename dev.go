package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// devMode runs the program and runs it again each time its file changes.
// It only returns if the watcher cannot be set up.
func devMode(cfg Config) error {
	file := filepath.Clean(cfg.Program)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	run := time.After(1 * time.Millisecond)
	for {
		select {
		case <-run:
			log.Printf("dev: run %s", filepath.Base(file))
			if err := devRun(cfg); err != nil {
				log.Printf("dev: %v", err)
			}
		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == file && !ev.IsAttrib() {
				run = time.After(100 * time.Millisecond)
			}
		case err := <-watcher.Error:
			log.Printf("dev: watcher: %v", err)
		}
	}
}

// devStepLimit bounds each run when no limit is configured, so that an
// edit that introduces an infinite loop does not wedge the watcher.
const devStepLimit = 10_000_000

func devRun(cfg Config) error {
	if cfg.Steps == 0 {
		cfg.Steps = devStepLimit
	}
	_, err := run(context.Background(), os.Stdout, cfg)
	return err
}
